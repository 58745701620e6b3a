package ports

import (
	"context"

	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"
)

// DelivererRepository defines the persistence contract for deliverer profiles,
// including their availability windows and route zones.
type DelivererRepository interface {
	// Add persists a new deliverer.
	Add(ctx context.Context, aggregate *deliverer.Deliverer) error

	// Update persists changes, replacing windows and zones with the aggregate's.
	Update(ctx context.Context, aggregate *deliverer.Deliverer) error

	// Get retrieves a deliverer by id, or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error)

	// GetForUpdate is Get holding a row lock on the deliverer until the surrounding
	// transaction ends. Capacity checks read through it so that two accepts for the
	// same deliverer run one after the other.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*deliverer.Deliverer, error)

	// GetAllEligible returns every active and verified deliverer.
	GetAllEligible(ctx context.Context) ([]*deliverer.Deliverer, error)
}
