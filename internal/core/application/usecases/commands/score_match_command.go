package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrScoreMatchCommandIsNotConstructed = errors.New(
	"ScoreMatchCommand must be created via NewScoreMatchCommand constructor",
)

// ScoreMatchCommand scores one deliverer against one announcement.
type ScoreMatchCommand struct {
	announcementID kernel.UUID
	delivererID    kernel.UUID

	guard guard.ConstructorGuard
}

func NewScoreMatchCommand(announcementID, delivererID kernel.UUID) (ScoreMatchCommand, error) {
	if err := errors.Join(announcementID.Validate(), delivererID.Validate()); err != nil {
		return ScoreMatchCommand{}, err
	}
	return ScoreMatchCommand{
		announcementID: announcementID,
		delivererID:    delivererID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c ScoreMatchCommand) Validate() error {
	return c.guard.Validate(ErrScoreMatchCommandIsNotConstructed)
}

func (c ScoreMatchCommand) AnnouncementID() kernel.UUID { return c.announcementID }
func (c ScoreMatchCommand) DelivererID() kernel.UUID    { return c.delivererID }
