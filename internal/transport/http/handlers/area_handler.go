package handlers

import (
	"net/http"

	accesssvc "github.com/maniyoussef/ticketflow/internal/services/access"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

// AreaHandler answers for routes behind the group guard; by the time it
// runs, the middleware has already admitted the actor.
type AreaHandler struct{}

func NewAreaHandler() *AreaHandler {
	return &AreaHandler{}
}

func (h *AreaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	decision, ok := accesssvc.DecisionFromContext(r.Context())
	if !ok {
		writeInternal(w, "INTERNAL_ERROR", "missing access decision")
		return
	}

	httperrors.Write(w, http.StatusOK, toAccessResponse(decision))
}
