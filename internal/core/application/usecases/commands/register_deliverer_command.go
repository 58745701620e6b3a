package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

var ErrRegisterDelivererCommandIsNotConstructed = errors.New(
	"RegisterDelivererCommand must be created via NewRegisterDelivererCommand constructor",
)

// RouteZoneInput is a zone declared at registration.
type RouteZoneInput struct {
	Center   kernel.Location
	RadiusKm float64
}

// RegisterDelivererParams groups the profile of a new deliverer.
type RegisterDelivererParams struct {
	Actor               kernel.Actor
	DelivererID         kernel.UUID
	Name                string
	Verified            bool
	Location            *kernel.Location
	PreferredCategories []string
	RouteZones          []RouteZoneInput
}

// RegisterDelivererCommand creates the courier profile of a user. Deliverers register
// themselves; only admins may register someone else or mark a profile verified.
type RegisterDelivererCommand struct {
	params RegisterDelivererParams

	guard guard.ConstructorGuard
}

func NewRegisterDelivererCommand(p RegisterDelivererParams) (RegisterDelivererCommand, error) {
	if err := errors.Join(p.Actor.Validate(), p.DelivererID.Validate()); err != nil {
		return RegisterDelivererCommand{}, err
	}
	if !p.Actor.IsAdmin() {
		if !p.Actor.Is(p.DelivererID) {
			return RegisterDelivererCommand{}, errs.NewPermissionDeniedError(p.Actor.ID().String(), "register another deliverer")
		}
		if p.Verified {
			return RegisterDelivererCommand{}, errs.NewPermissionDeniedError(p.Actor.ID().String(), "verify a deliverer")
		}
	}

	return RegisterDelivererCommand{params: p, guard: guard.NewConstructorGuard()}, nil
}

func (c RegisterDelivererCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDelivererCommandIsNotConstructed)
}

func (c RegisterDelivererCommand) Params() RegisterDelivererParams { return c.params }
