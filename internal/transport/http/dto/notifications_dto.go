package dto

import "time"

type NotificationResponse struct {
	ID              string    `json:"id"`
	Message         string    `json:"message"`
	Category        string    `json:"category"`
	TargetRoute     string    `json:"target_route,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	IsRead          bool      `json:"is_read"`
	Highlight       bool      `json:"highlight"`
	RecipientID     *int64    `json:"recipient_id,omitempty"`
	RelatedEntityID *int64    `json:"related_entity_id,omitempty"`
}

type FeedResponse struct {
	Entries        []NotificationResponse `json:"entries"`
	UnreadCount    int                    `json:"unread_count"`
	CategoryCounts map[string]int         `json:"category_counts"`
	OtherCount     int                    `json:"other_count"`
}

type PublishNotificationRequest struct {
	Message         string `json:"message"`
	Category        string `json:"category"`
	TargetRoute     string `json:"target_route,omitempty"`
	RecipientID     *int64 `json:"recipient_id,omitempty"`
	RelatedEntityID *int64 `json:"related_entity_id,omitempty"`
}
