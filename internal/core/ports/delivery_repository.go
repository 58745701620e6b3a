// Package ports defines the contracts between the delivery core and its infrastructure:
// repositories, the unit of work and the external collaborators (broadcast,
// notification, geocoding).
package ports

import (
	"context"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for the Delivery aggregate root.
type DeliveryRepository interface {
	// Add persists a new delivery. A second delivery for the same announcement is
	// rejected with a ConcurrentModificationError.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes with an optimistic check on Version().
	// If the stored version moved on, it returns a ConcurrentModificationError and
	// the caller may refetch and retry. On success the aggregate version is committed.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery by id, or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetAllInFlight returns deliveries in IN_TRANSIT or NEARBY with tracking enabled.
	// Used by the periodic ETA refresh.
	GetAllInFlight(ctx context.Context) ([]*delivery.Delivery, error)

	// CountActiveByDeliverer counts the non-terminal deliveries held by a deliverer.
	CountActiveByDeliverer(ctx context.Context, delivererID kernel.UUID) (int, error)
}

// TrackingRepository stores the append-only status history and position series of a
// delivery together with its single live ETA row.
type TrackingRepository interface {
	// AppendStatus appends a history entry. Entries are never updated.
	AppendStatus(ctx context.Context, entry *delivery.StatusHistoryEntry) error

	// AppendPosition appends a position ping. Positions are never updated.
	AppendPosition(ctx context.Context, position *delivery.TrackingPosition) error

	// GetPositionsSince returns the positions recorded at or after since, oldest first.
	GetPositionsSince(ctx context.Context, deliveryID kernel.UUID, since time.Time) ([]*delivery.TrackingPosition, error)

	// GetETA returns the live estimate, or an ObjectNotFoundError when none was computed.
	GetETA(ctx context.Context, deliveryID kernel.UUID) (*delivery.ETA, error)

	// SaveETA replaces the live estimate of the delivery.
	SaveETA(ctx context.Context, eta *delivery.ETA) error
}

// ProofRepository stores proof-of-delivery data: checkpoints, the confirmation code
// and ratings.
type ProofRepository interface {
	// AddCheckpoint appends an immutable checkpoint.
	AddCheckpoint(ctx context.Context, checkpoint *delivery.Checkpoint) error

	// HasCheckpoint reports whether a checkpoint of the given type exists.
	HasCheckpoint(ctx context.Context, deliveryID kernel.UUID, checkpointType delivery.CheckpointType) (bool, error)

	// GetConfirmationCode returns the current code, or an ObjectNotFoundError.
	GetConfirmationCode(ctx context.Context, deliveryID kernel.UUID) (*delivery.ConfirmationCode, error)

	// SaveConfirmationCode stores the single code of a delivery, replacing any previous one.
	SaveConfirmationCode(ctx context.Context, code *delivery.ConfirmationCode) error

	// AddRating stores a rating. A second rating by the same rater on the same delivery
	// is rejected with a ValueIsInvalidError.
	AddRating(ctx context.Context, rating *delivery.Rating) error
}
