package commands

import (
	"errors"
	"strings"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryParams groups the inputs of a drop-off confirmation.
type ConfirmDeliveryParams struct {
	DeliveryID kernel.UUID
	Actor      kernel.Actor
	// Code is the recipient's confirmation code. Empty means no code was handed over.
	Code     string
	Proofs   delivery.Proofs
	Notes    string
	Location *kernel.Location
}

// ConfirmDeliveryCommand closes a delivery with its proof of delivery.
type ConfirmDeliveryCommand struct {
	params ConfirmDeliveryParams

	guard guard.ConstructorGuard
}

func NewConfirmDeliveryCommand(p ConfirmDeliveryParams) (ConfirmDeliveryCommand, error) {
	if err := errors.Join(p.DeliveryID.Validate(), p.Actor.Validate()); err != nil {
		return ConfirmDeliveryCommand{}, err
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return ConfirmDeliveryCommand{}, err
		}
		loc := *p.Location
		p.Location = &loc
	}
	p.Code = strings.TrimSpace(p.Code)
	p.Notes = strings.TrimSpace(p.Notes)

	return ConfirmDeliveryCommand{params: p, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}

func (c ConfirmDeliveryCommand) DeliveryID() kernel.UUID    { return c.params.DeliveryID }
func (c ConfirmDeliveryCommand) Actor() kernel.Actor        { return c.params.Actor }
func (c ConfirmDeliveryCommand) Code() string               { return c.params.Code }
func (c ConfirmDeliveryCommand) Proofs() delivery.Proofs    { return c.params.Proofs }
func (c ConfirmDeliveryCommand) Notes() string              { return c.params.Notes }
func (c ConfirmDeliveryCommand) Location() *kernel.Location { return c.params.Location }
