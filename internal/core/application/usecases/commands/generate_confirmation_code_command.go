package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrGenerateConfirmationCodeCommandIsNotConstructed = errors.New(
	"GenerateConfirmationCodeCommand must be created via NewGenerateConfirmationCodeCommand constructor",
)

// GenerateConfirmationCodeCommand issues a new confirmation code for a delivery.
type GenerateConfirmationCodeCommand struct {
	deliveryID kernel.UUID
	actor      kernel.Actor

	guard guard.ConstructorGuard
}

func NewGenerateConfirmationCodeCommand(deliveryID kernel.UUID, actor kernel.Actor) (GenerateConfirmationCodeCommand, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GenerateConfirmationCodeCommand{}, err
	}
	return GenerateConfirmationCodeCommand{
		deliveryID: deliveryID,
		actor:      actor,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c GenerateConfirmationCodeCommand) Validate() error {
	return c.guard.Validate(ErrGenerateConfirmationCodeCommandIsNotConstructed)
}

func (c GenerateConfirmationCodeCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c GenerateConfirmationCodeCommand) Actor() kernel.Actor     { return c.actor }
