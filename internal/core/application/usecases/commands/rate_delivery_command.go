package commands

import (
	"errors"
	"strings"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrRateDeliveryCommandIsNotConstructed = errors.New(
	"RateDeliveryCommand must be created via NewRateDeliveryCommand constructor",
)

// RateDeliveryCommand carries a 1 to 5 rating left by one party of a delivery.
// The score range is checked by the rating itself.
type RateDeliveryCommand struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	score      int
	comment    string

	guard guard.ConstructorGuard
}

func NewRateDeliveryCommand(deliveryID kernel.UUID, actor kernel.Actor, score int, comment string) (RateDeliveryCommand, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return RateDeliveryCommand{}, err
	}
	return RateDeliveryCommand{
		deliveryID: deliveryID,
		actor:      actor,
		score:      score,
		comment:    strings.TrimSpace(comment),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrRateDeliveryCommandIsNotConstructed)
}

func (c RateDeliveryCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c RateDeliveryCommand) Actor() kernel.Actor     { return c.actor }
func (c RateDeliveryCommand) Score() int              { return c.score }
func (c RateDeliveryCommand) Comment() string         { return c.comment }
