package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrRecalculateETACommandIsNotConstructed = errors.New(
	"RecalculateETACommand must be created via NewRecalculateETACommand constructor",
)

// RecalculateETACommand asks for a fresh estimate of one delivery.
// A nil actor means the request comes from the scheduler and skips authorization.
type RecalculateETACommand struct {
	deliveryID kernel.UUID
	actor      *kernel.Actor

	guard guard.ConstructorGuard
}

func NewRecalculateETACommand(deliveryID kernel.UUID, actor *kernel.Actor) (RecalculateETACommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return RecalculateETACommand{}, err
	}
	if actor != nil {
		if err := actor.Validate(); err != nil {
			return RecalculateETACommand{}, err
		}
		a := *actor
		actor = &a
	}

	return RecalculateETACommand{
		deliveryID: deliveryID,
		actor:      actor,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RecalculateETACommand) Validate() error {
	return c.guard.Validate(ErrRecalculateETACommandIsNotConstructed)
}

func (c RecalculateETACommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c RecalculateETACommand) Actor() *kernel.Actor    { return c.actor }
