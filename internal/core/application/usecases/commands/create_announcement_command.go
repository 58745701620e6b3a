package commands

import (
	"errors"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

var ErrCreateAnnouncementCommandIsNotConstructed = errors.New(
	"CreateAnnouncementCommand must be created via NewCreateAnnouncementCommand constructor",
)

// CreateAnnouncementParams groups what a client provides when posting a request.
// Coordinates are optional; addresses without them are geocoded on a best-effort basis.
type CreateAnnouncementParams struct {
	Actor           kernel.Actor
	ClientID        kernel.UUID
	Title           string
	Category        string
	PickupAddress   string
	PickupLocation  *kernel.Location
	DropoffAddress  string
	DropoffLocation *kernel.Location
	SuggestedPrice  *float64
	ScheduledDate   *time.Time
}

// CreateAnnouncementCommand posts a new delivery request.
type CreateAnnouncementCommand struct {
	params CreateAnnouncementParams

	guard guard.ConstructorGuard
}

func NewCreateAnnouncementCommand(p CreateAnnouncementParams) (CreateAnnouncementCommand, error) {
	if err := errors.Join(p.Actor.Validate(), p.ClientID.Validate()); err != nil {
		return CreateAnnouncementCommand{}, err
	}
	if !p.Actor.IsAdmin() && !p.Actor.Is(p.ClientID) {
		return CreateAnnouncementCommand{}, errs.NewPermissionDeniedError(p.Actor.ID().String(), "post an announcement for another client")
	}
	p.PickupAddress = strings.TrimSpace(p.PickupAddress)
	p.DropoffAddress = strings.TrimSpace(p.DropoffAddress)

	return CreateAnnouncementCommand{params: p, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateAnnouncementCommand) Validate() error {
	return c.guard.Validate(ErrCreateAnnouncementCommandIsNotConstructed)
}

func (c CreateAnnouncementCommand) Params() CreateAnnouncementParams { return c.params }
