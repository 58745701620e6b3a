package kafka

import (
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/ports"
)

// EventDTO is the wire form of a delivery event on the events topic.
type EventDTO struct {
	Type       string         `json:"type"`
	DeliveryID string         `json:"delivery_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// NotificationDTO is the wire form of a user notification.
type NotificationDTO struct {
	UserID   string         `json:"user_id"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Category string         `json:"category"`
	Link     string         `json:"link,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
}

func eventFromDomain(e delivery.Event) EventDTO {
	return EventDTO{
		Type:       string(e.Type),
		DeliveryID: e.DeliveryID.String(),
		OccurredAt: e.OccurredAt.UTC(),
		Payload:    e.Payload,
	}
}

func notificationFromDomain(n ports.Notification, now time.Time) NotificationDTO {
	return NotificationDTO{
		UserID:   n.UserID.String(),
		Title:    n.Title,
		Message:  n.Message,
		Category: n.Category,
		Link:     n.Link,
		Data:     n.Data,
		SentAt:   now.UTC(),
	}
}
