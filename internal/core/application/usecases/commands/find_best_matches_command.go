package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

// DefaultMatchLimit is the number of candidates kept when no limit is given.
const DefaultMatchLimit = 5

var ErrFindBestMatchesCommandIsNotConstructed = errors.New(
	"FindBestMatchesCommand must be created via NewFindBestMatchesCommand constructor",
)

// FindBestMatchesCommand ranks the eligible deliverers for an announcement.
// A nil actor means the request comes from the scheduler.
type FindBestMatchesCommand struct {
	announcementID kernel.UUID
	actor          *kernel.Actor
	limit          int

	guard guard.ConstructorGuard
}

// NewFindBestMatchesCommand validates the request. A zero limit means DefaultMatchLimit.
func NewFindBestMatchesCommand(announcementID kernel.UUID, actor *kernel.Actor, limit int) (FindBestMatchesCommand, error) {
	if err := announcementID.Validate(); err != nil {
		return FindBestMatchesCommand{}, err
	}
	if limit == 0 {
		limit = DefaultMatchLimit
	}
	if limit < 0 {
		return FindBestMatchesCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	if actor != nil {
		if err := actor.Validate(); err != nil {
			return FindBestMatchesCommand{}, err
		}
		a := *actor
		actor = &a
	}

	return FindBestMatchesCommand{
		announcementID: announcementID,
		actor:          actor,
		limit:          limit,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c FindBestMatchesCommand) Validate() error {
	return c.guard.Validate(ErrFindBestMatchesCommandIsNotConstructed)
}

func (c FindBestMatchesCommand) AnnouncementID() kernel.UUID { return c.announcementID }
func (c FindBestMatchesCommand) Actor() *kernel.Actor        { return c.actor }
func (c FindBestMatchesCommand) Limit() int                  { return c.limit }
