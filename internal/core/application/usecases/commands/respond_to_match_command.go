package commands

import (
	"errors"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/guard"
)

var ErrRespondToMatchCommandIsNotConstructed = errors.New(
	"RespondToMatchCommand must be created via NewRespondToMatchCommand constructor",
)

// RespondToMatchCommand carries a deliverer's answer to a proposal.
type RespondToMatchCommand struct {
	matchID  kernel.UUID
	actor    kernel.Actor
	decision matching.Decision

	guard guard.ConstructorGuard
}

func NewRespondToMatchCommand(matchID kernel.UUID, actor kernel.Actor, decision matching.Decision) (RespondToMatchCommand, error) {
	if err := errors.Join(matchID.Validate(), actor.Validate(), decision.Validate()); err != nil {
		return RespondToMatchCommand{}, err
	}
	return RespondToMatchCommand{
		matchID:  matchID,
		actor:    actor,
		decision: decision,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RespondToMatchCommand) Validate() error {
	return c.guard.Validate(ErrRespondToMatchCommandIsNotConstructed)
}

func (c RespondToMatchCommand) MatchID() kernel.UUID        { return c.matchID }
func (c RespondToMatchCommand) Actor() kernel.Actor         { return c.actor }
func (c RespondToMatchCommand) Decision() matching.Decision { return c.decision }
