package handlers

import (
	"errors"
	"net/http"

	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	"github.com/maniyoussef/ticketflow/internal/transport/http/dto"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

type MeHandler struct {
	identity *identitysvc.Service
}

func NewMeHandler(identity *identitysvc.Service) *MeHandler {
	return &MeHandler{identity: identity}
}

// Handle returns whatever the fallback chain can produce, including a
// tokenless fragments identity. Only a fully-absent identity is a 401.
func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		writeInternal(w, "IDENTITY_SERVICE_UNAVAILABLE", "identity service is unavailable")
		return
	}

	resolved, err := h.identity.Resolve(r.Context())
	if err != nil {
		if errors.Is(err, identitysvc.ErrNoIdentity) {
			writeUnauthorized(w, "UNAUTHORIZED", "no usable identity")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, toMeResponse(resolved))
}

func toMeResponse(resolved identitysvc.ResolvedIdentity) dto.MeResponse {
	roles := resolved.Roles.List()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return dto.MeResponse{
		ActorID:     resolved.ActorID,
		DisplayName: resolved.DisplayName,
		Roles:       names,
		TokenValid:  resolved.TokenValid,
		Source:      string(resolved.Source),
	}
}
