package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	accesssvc "github.com/maniyoussef/ticketflow/internal/services/access"
	"github.com/maniyoussef/ticketflow/internal/transport/http/dto"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

type AccessHandler struct {
	access *accesssvc.Service
}

func NewAccessHandler(access *accesssvc.Service) *AccessHandler {
	return &AccessHandler{access: access}
}

// Probe answers "could the current actor enter this group" without
// entering it. The decision itself is always a 200; only an unknown
// group is an error.
func (h *AccessHandler) Probe(w http.ResponseWriter, r *http.Request) {
	if h.access == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access service is unavailable")
		return
	}

	group := enums.RouteGroup(chi.URLParam(r, "group"))
	if !group.Valid() {
		writeBadRequest(w, "UNKNOWN_GROUP", "unknown route group")
		return
	}

	decision := h.access.CanEnter(r.Context(), group)
	httperrors.Write(w, http.StatusOK, toAccessResponse(decision))
}

func toAccessResponse(decision accesssvc.Decision) dto.AccessResponse {
	response := dto.AccessResponse{
		Group:   string(decision.Group),
		Allowed: decision.Allowed,
	}
	if !decision.Allowed {
		response.Reason = string(decision.Reason)
	}
	for _, role := range decision.Roles {
		response.Roles = append(response.Roles, string(role))
	}
	return response
}
