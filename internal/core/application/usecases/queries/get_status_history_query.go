package queries

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrGetStatusHistoryQueryIsNotConstructed = errors.New(
	"GetStatusHistoryQuery must be created via NewGetStatusHistoryQuery constructor",
)

// GetStatusHistoryQuery lists the status changes of a delivery, oldest first.
type GetStatusHistoryQuery struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	guard      guard.ConstructorGuard
}

func NewGetStatusHistoryQuery(deliveryID kernel.UUID, actor kernel.Actor) (GetStatusHistoryQuery, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GetStatusHistoryQuery{}, err
	}
	return GetStatusHistoryQuery{deliveryID: deliveryID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetStatusHistoryQuery) DeliveryID() kernel.UUID { return q.deliveryID }
func (q GetStatusHistoryQuery) Actor() kernel.Actor     { return q.actor }

func (q GetStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusHistoryQueryIsNotConstructed)
}

// GetStatusHistoryQueryResponse is one recorded transition.
type GetStatusHistoryQueryResponse struct {
	ID               kernel.UUID
	Status           delivery.Status
	PreviousStatus   delivery.Status
	ChangedAt        time.Time
	ActorID          kernel.UUID
	Location         *kernel.Location
	Notes            string
	Reason           string
	CustomerNotified bool
}
