package ports

import (
	"context"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
)

// Broadcaster pushes live delivery events to whoever follows a delivery.
// Delivery is best-effort; callers log failures and carry on.
type Broadcaster interface {
	Publish(ctx context.Context, deliveryID kernel.UUID, event delivery.Event) error
}

// Notification is a message addressed to one user.
type Notification struct {
	UserID   kernel.UUID
	Title    string
	Message  string
	Category string
	Link     string
	Data     map[string]any
}

// Notifier hands notifications to the delivery channel (push, mail, in-app).
// It is fire-and-forget from the core's point of view.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// Geocoder resolves a postal address to coordinates. An error means the address
// could not be resolved right now; callers fall back to historical estimates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.Location, error)
}
