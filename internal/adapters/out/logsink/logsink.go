// Package logsink writes broadcasts and notifications to the process log. It is
// used when no message broker is configured.
package logsink

import (
	"context"
	"log/slog"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"
)

type Sink struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Sink {
	return &Sink{logger: logger.With("component", "logsink")}
}

func (s *Sink) Publish(ctx context.Context, deliveryID kernel.UUID, event delivery.Event) error {
	s.logger.InfoContext(ctx, "delivery event",
		"delivery_id", deliveryID.String(),
		"event", string(event.Type),
		"occurred_at", event.OccurredAt,
		"payload", event.Payload,
	)
	return nil
}

func (s *Sink) Notify(ctx context.Context, n ports.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"user_id", n.UserID.String(),
		"category", n.Category,
		"title", n.Title,
		"link", n.Link,
	)
	return nil
}

var (
	_ ports.Broadcaster = (*Sink)(nil)
	_ ports.Notifier    = (*Sink)(nil)
)
