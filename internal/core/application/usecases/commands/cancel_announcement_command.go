package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrCancelAnnouncementCommandIsNotConstructed = errors.New(
	"CancelAnnouncementCommand must be created via NewCancelAnnouncementCommand constructor",
)

type CancelAnnouncementCommand struct {
	announcementID kernel.UUID
	actor          kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelAnnouncementCommand(announcementID kernel.UUID, actor kernel.Actor) (CancelAnnouncementCommand, error) {
	if err := errors.Join(announcementID.Validate(), actor.Validate()); err != nil {
		return CancelAnnouncementCommand{}, err
	}
	return CancelAnnouncementCommand{
		announcementID: announcementID,
		actor:          actor,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CancelAnnouncementCommand) Validate() error {
	return c.guard.Validate(ErrCancelAnnouncementCommandIsNotConstructed)
}

func (c CancelAnnouncementCommand) AnnouncementID() kernel.UUID { return c.announcementID }
func (c CancelAnnouncementCommand) Actor() kernel.Actor         { return c.actor }
