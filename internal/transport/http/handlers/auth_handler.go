package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	notifsvc "github.com/maniyoussef/ticketflow/internal/services/notifications"
	"github.com/maniyoussef/ticketflow/internal/transport/http/dto"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

// syncTrigger is the slice of the sync job the handlers need.
type syncTrigger interface {
	TriggerSync(ctx context.Context, kind enums.SyncKind) error
}

type AuthHandler struct {
	identity *identitysvc.Service
	feed     *notifsvc.Service
	syncer   syncTrigger
	logger   *zap.Logger
}

func NewAuthHandler(identity *identitysvc.Service, feed *notifsvc.Service, syncer syncTrigger, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		identity: identity,
		feed:     feed,
		syncer:   syncer,
		logger:   logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		writeInternal(w, "IDENTITY_SERVICE_UNAVAILABLE", "identity service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	resolved, err := h.identity.Login(r.Context(), identitysvc.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleIdentityError(w, err)
		return
	}

	if h.feed != nil {
		h.feed.SetActor(resolved.ActorID)
	}
	if h.syncer != nil {
		// warm the feed without holding the login response
		go func() {
			if err := h.syncer.TriggerSync(context.Background(), enums.SyncKindLogin); err != nil {
				h.logger.Debug("post-login sync failed", zap.Error(err))
			}
		}()
	}

	httperrors.Write(w, http.StatusOK, toMeResponse(resolved))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		writeInternal(w, "IDENTITY_SERVICE_UNAVAILABLE", "identity service is unavailable")
		return
	}

	if err := h.identity.Logout(r.Context()); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	if h.feed != nil {
		if _, err := h.feed.Clear(r.Context()); err != nil {
			h.logger.Warn("clear feed on logout", zap.Error(err))
		}
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func handleIdentityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identitysvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "email and password are required")
	case errors.Is(err, identitysvc.ErrBackendUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "invalid credentials")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
