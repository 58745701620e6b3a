package commands

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrUpdateDelivererProfileCommandIsNotConstructed = errors.New(
	"UpdateDelivererProfileCommand must be created via one of the NewUpdateDelivererProfile constructors",
)

// UpdateDelivererProfileCommand changes one aspect of a deliverer profile: its idle
// location, an availability window or a route zone. Each constructor builds one kind
// of change.
type UpdateDelivererProfileCommand struct {
	delivererID kernel.UUID
	actor       kernel.Actor
	apply       func(d *deliverer.Deliverer) error

	guard guard.ConstructorGuard
}

func newUpdateDelivererProfileCommand(
	delivererID kernel.UUID,
	actor kernel.Actor,
	apply func(d *deliverer.Deliverer) error,
) (UpdateDelivererProfileCommand, error) {
	if err := errors.Join(delivererID.Validate(), actor.Validate()); err != nil {
		return UpdateDelivererProfileCommand{}, err
	}
	return UpdateDelivererProfileCommand{
		delivererID: delivererID,
		actor:       actor,
		apply:       apply,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// NewUpdateDelivererLocationCommand replaces the idle position used by the distance
// factor. A nil location clears it.
func NewUpdateDelivererLocationCommand(
	delivererID kernel.UUID,
	actor kernel.Actor,
	location *kernel.Location,
) (UpdateDelivererProfileCommand, error) {
	if location != nil {
		if err := location.Validate(); err != nil {
			return UpdateDelivererProfileCommand{}, err
		}
		loc := *location
		location = &loc
	}
	return newUpdateDelivererProfileCommand(delivererID, actor, func(d *deliverer.Deliverer) error {
		return d.UpdateLocation(location)
	})
}

// NewAddDelivererAvailabilityCommand declares a window in which the deliverer is
// available, or explicitly unavailable.
func NewAddDelivererAvailabilityCommand(
	delivererID kernel.UUID,
	actor kernel.Actor,
	start, end time.Time,
	isAvailable bool,
) (UpdateDelivererProfileCommand, error) {
	window, err := deliverer.NewAvailabilityWindow(kernel.NewUUID(), start.UTC(), end.UTC(), isAvailable)
	if err != nil {
		return UpdateDelivererProfileCommand{}, err
	}
	return newUpdateDelivererProfileCommand(delivererID, actor, func(d *deliverer.Deliverer) error {
		return d.AddAvailability(window)
	})
}

// NewAddDelivererRouteZoneCommand declares a zone the deliverer regularly covers.
func NewAddDelivererRouteZoneCommand(
	delivererID kernel.UUID,
	actor kernel.Actor,
	center kernel.Location,
	radiusKm float64,
) (UpdateDelivererProfileCommand, error) {
	zone, err := deliverer.NewRouteZone(center, radiusKm)
	if err != nil {
		return UpdateDelivererProfileCommand{}, err
	}
	return newUpdateDelivererProfileCommand(delivererID, actor, func(d *deliverer.Deliverer) error {
		d.AddRouteZone(zone)
		return nil
	})
}

func (c UpdateDelivererProfileCommand) Validate() error {
	if c.apply == nil {
		return ErrUpdateDelivererProfileCommandIsNotConstructed
	}
	return c.guard.Validate(ErrUpdateDelivererProfileCommandIsNotConstructed)
}

func (c UpdateDelivererProfileCommand) DelivererID() kernel.UUID { return c.delivererID }
func (c UpdateDelivererProfileCommand) Actor() kernel.Actor      { return c.actor }
