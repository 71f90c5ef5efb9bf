package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	syncjob "github.com/maniyoussef/ticketflow/internal/jobs/sync"
	"github.com/maniyoussef/ticketflow/internal/transport/http/dto"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

type SyncHandler struct {
	syncer  syncTrigger
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewSyncHandler wires the manual sync trigger. perMinute/burst bound
// how hard clients can hammer the backend through this endpoint.
func NewSyncHandler(syncer syncTrigger, perMinute, burst int, logger *zap.Logger) *SyncHandler {
	if perMinute <= 0 {
		perMinute = 6
	}
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		syncer:  syncer,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		logger:  logger,
	}
}

// Trigger runs one on-demand cycle. A cycle already in flight for the
// same kind is reported as accepted-but-collapsed rather than an error.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeInternal(w, "SYNC_SERVICE_UNAVAILABLE", "sync service is unavailable")
		return
	}

	var req dto.SyncRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	kind := enums.SyncKindManual
	if req.Kind != "" {
		kind = enums.SyncKind(req.Kind)
	}
	if kind != enums.SyncKindManual && kind != enums.SyncKindNavigation {
		writeBadRequest(w, "INVALID_REQUEST", "kind must be manual or navigation")
		return
	}

	reservation := h.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "manual sync rate limit exceeded",
			RetryAfterSec: int64(delay.Seconds()) + 1,
		})
		return
	}

	if err := h.syncer.TriggerSync(r.Context(), kind); err != nil {
		if errors.Is(err, syncjob.ErrSyncInFlight) {
			httperrors.Write(w, http.StatusAccepted, dto.SyncResponse{Triggered: false, Kind: string(kind)})
			return
		}
		h.logger.Warn("manual sync cycle failed", zap.Error(err))
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "SYNC_FAILED",
			Message: "synchronization cycle failed",
		})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SyncResponse{Triggered: true, Kind: string(kind)})
}
