package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
	notifsvc "github.com/maniyoussef/ticketflow/internal/services/notifications"
	"github.com/maniyoussef/ticketflow/internal/transport/http/dto"
	httperrors "github.com/maniyoussef/ticketflow/internal/transport/http/errors"
)

type NotificationsHandler struct {
	feed *notifsvc.Service
}

func NewNotificationsHandler(feed *notifsvc.Service) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}
	httperrors.Write(w, http.StatusOK, toFeedResponse(h.feed.Snapshot(r.Context())))
}

func (h *NotificationsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	var req dto.PublishNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Message == "" {
		writeBadRequest(w, "INVALID_REQUEST", "message is required")
		return
	}

	snapshot, err := h.feed.PublishLocal(r.Context(), model.Notification{
		Message:         req.Message,
		Category:        enums.NotificationCategory(req.Category),
		TargetRoute:     req.TargetRoute,
		RecipientID:     req.RecipientID,
		RelatedEntityID: req.RelatedEntityID,
	})
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "unknown notification category")
		return
	}

	httperrors.Write(w, http.StatusCreated, toFeedResponse(snapshot))
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	snapshot, err := h.feed.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, notifsvc.ErrNotFoundNotification) {
			writeNotFound(w, "NOT_FOUND", "notification not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, toFeedResponse(snapshot))
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	snapshot, err := h.feed.MarkAllRead(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, toFeedResponse(snapshot))
}

func (h *NotificationsHandler) ClearRead(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	snapshot, err := h.feed.ClearRead(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, toFeedResponse(snapshot))
}

func toFeedResponse(snapshot model.FeedSnapshot) dto.FeedResponse {
	highlighted := make(map[string]bool, len(snapshot.HighlightIDs))
	for _, id := range snapshot.HighlightIDs {
		highlighted[id] = true
	}

	entries := make([]dto.NotificationResponse, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		entries = append(entries, dto.NotificationResponse{
			ID:              entry.ID,
			Message:         entry.Message,
			Category:        string(entry.Category),
			TargetRoute:     entry.TargetRoute,
			CreatedAt:       entry.CreatedAt,
			IsRead:          entry.IsRead,
			Highlight:       highlighted[entry.ID],
			RecipientID:     entry.RecipientID,
			RelatedEntityID: entry.RelatedEntityID,
		})
	}

	counts := make(map[string]int, len(snapshot.CategoryCounts))
	for category, count := range snapshot.CategoryCounts {
		counts[string(category)] = count
	}

	return dto.FeedResponse{
		Entries:        entries,
		UnreadCount:    snapshot.UnreadCount,
		CategoryCounts: counts,
		OtherCount:     snapshot.OtherCount,
	}
}
