package commands

import (
	"errors"
	"strings"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrTransitionStatusCommandIsNotConstructed = errors.New(
	"TransitionStatusCommand must be created via NewTransitionStatusCommand constructor",
)

// TransitionStatusCommand requests a manual lifecycle change of a delivery.
//
// Example:
//
//	cmd, err := NewTransitionStatusCommand(deliveryID, actor, delivery.PickedUp, nil, "parcel sealed", "")
//	if err != nil {
//	    return err
//	}
//	entry, err := handler.Handle(ctx, cmd)
type TransitionStatusCommand struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	status     delivery.Status
	location   *kernel.Location
	notes      string
	reason     string

	guard guard.ConstructorGuard
}

// NewTransitionStatusCommand validates the identifiers, the target status and the
// optional location.
func NewTransitionStatusCommand(
	deliveryID kernel.UUID,
	actor kernel.Actor,
	status delivery.Status,
	location *kernel.Location,
	notes, reason string,
) (TransitionStatusCommand, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate(), status.Validate()); err != nil {
		return TransitionStatusCommand{}, err
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return TransitionStatusCommand{}, err
		}
		loc := *location
		location = &loc
	}

	return TransitionStatusCommand{
		deliveryID: deliveryID,
		actor:      actor,
		status:     status,
		location:   location,
		notes:      strings.TrimSpace(notes),
		reason:     strings.TrimSpace(reason),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionStatusCommandIsNotConstructed)
}

func (c TransitionStatusCommand) DeliveryID() kernel.UUID { return c.deliveryID }
func (c TransitionStatusCommand) Actor() kernel.Actor     { return c.actor }
func (c TransitionStatusCommand) Status() delivery.Status { return c.status }

// Details returns the context recorded with the history entry.
func (c TransitionStatusCommand) Details() delivery.TransitionDetails {
	return delivery.TransitionDetails{Location: c.location, Notes: c.notes, Reason: c.reason}
}
