package model

import (
	"time"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
)

// Notification is one feed entry. IDs are opaque, assigned at creation
// and never reused; the reconciliation engine keys its merge on them.
type Notification struct {
	ID              string                     `json:"id"`
	Message         string                     `json:"message"`
	Category        enums.NotificationCategory `json:"category"`
	TargetRoute     string                     `json:"target_route"`
	CreatedAt       time.Time                  `json:"created_at"`
	IsRead          bool                       `json:"is_read"`
	RecipientID     *int64                     `json:"recipient_id,omitempty"`
	RelatedEntityID *int64                     `json:"related_entity_id,omitempty"`
}

// ForActor reports whether the notification addresses the given actor.
// A nil recipient means a broadcast entry.
func (n Notification) ForActor(actorID int64) bool {
	return n.RecipientID == nil || *n.RecipientID == actorID
}

// FeedSnapshot is the derived view of the merged feed for the current
// actor, sorted by CreatedAt descending.
type FeedSnapshot struct {
	Entries        []Notification                     `json:"entries"`
	UnreadCount    int                                `json:"unread_count"`
	CategoryCounts map[enums.NotificationCategory]int `json:"category_counts"`
	OtherCount     int                                `json:"other_count"`
	HighlightIDs   []string                           `json:"highlight_ids,omitempty"`
}
