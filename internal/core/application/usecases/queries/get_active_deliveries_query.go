package queries

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
)

// GetActiveDeliveriesQuery lists the non-terminal deliveries the actor can see:
// a client gets its own, a deliverer gets those assigned to it and an admin
// gets all of them.
//
// Example:
//
//	query, err := NewGetActiveDeliveriesQuery(actor)
//	if err != nil {
//	    return err
//	}
//	deliveries, err := NewGetActiveDeliveriesQueryHandler(db).Handle(ctx, query)
type GetActiveDeliveriesQuery struct {
	actor kernel.Actor
	guard guard.ConstructorGuard
}

func NewGetActiveDeliveriesQuery(actor kernel.Actor) (GetActiveDeliveriesQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetActiveDeliveriesQuery{}, err
	}
	return GetActiveDeliveriesQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveDeliveriesQuery) Actor() kernel.Actor { return q.actor }

func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

// GetActiveDeliveriesQueryResponse summarizes one delivery in flight.
type GetActiveDeliveriesQueryResponse struct {
	ID                 kernel.UUID
	TrackingCode       string
	Status             delivery.Status
	ClientID           kernel.UUID
	DelivererID        *kernel.UUID
	PickupAddress      string
	DropoffAddress     string
	CurrentLocation    *kernel.Location
	LastLocationUpdate *time.Time
	EstimatedArrival   *time.Time
	CreatedAt          time.Time
}
