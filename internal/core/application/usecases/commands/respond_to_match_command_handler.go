package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/ports"
)

// RespondToMatchResult is the outcome of an answer. Delivery is nil for a decline.
type RespondToMatchResult struct {
	Candidate *matching.Candidate
	Delivery  *delivery.Delivery
}

// RespondToMatchCommandHandler records a deliverer's answer to a proposal.
//
// Accepting creates the delivery, closes the announcement and assigns the deliverer
// in one transaction. Two accepts racing on the same candidate or announcement cannot
// both commit: the candidate update is conditional on PENDING and an announcement
// holds at most one delivery, so the loser gets a ConcurrentModificationError.
// Accepts for the same deliverer on different announcements are serialized by a
// row lock on the deliverer, taken before the active deliveries are counted.
//
// Example:
//
//	cmd, _ := NewRespondToMatchCommand(matchID, courier, matching.Accepted)
//	res, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrCapacityExceeded):
//	    // finish a delivery first
//	case errs.IsRetryable(err):
//	    // someone else answered first
//	}
type RespondToMatchCommandHandler struct {
	uowFactory UoWFactory
	publisher  Publisher
	flow       statusFlow
}

func NewRespondToMatchCommandHandler(
	uowFactory UoWFactory,
	publisher Publisher,
	geocoder ports.Geocoder,
) RespondToMatchCommandHandler {
	return RespondToMatchCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		flow:       newStatusFlow(geocoder),
	}
}

// Handle applies the decision.
//
// Returns:
//   - PermissionDeniedError unless the actor is the proposed deliverer
//   - InvalidTransitionError when the candidate was already answered or the
//     announcement is no longer open
//   - CapacityExceededError when accepting would exceed deliverer.MaxActiveDeliveries
//   - ConcurrentModificationError when a concurrent answer won
func (h RespondToMatchCommandHandler) Handle(
	ctx context.Context,
	cmd RespondToMatchCommand,
) (RespondToMatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return RespondToMatchResult{}, err
	}
	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RespondToMatchResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	candidate, err := uow.MatchRepository().Get(ctx, cmd.MatchID())
	if err != nil {
		return RespondToMatchResult{}, err
	}
	if err = candidate.Respond(cmd.Actor(), cmd.Decision(), now); err != nil {
		return RespondToMatchResult{}, err
	}

	outbox := events.NewOutbox()
	result := RespondToMatchResult{Candidate: candidate}
	if cmd.Decision() == matching.Accepted {
		if result.Delivery, err = h.accept(ctx, uow, candidate, cmd.Actor(), now, outbox); err != nil {
			return RespondToMatchResult{}, err
		}
	} else if err = uow.MatchRepository().SaveResponse(ctx, candidate); err != nil {
		return RespondToMatchResult{}, err
	}
	outbox.MatchResponded(cmd.Decision())

	if err = uow.Commit(ctx); err != nil {
		return RespondToMatchResult{}, err
	}
	h.publisher.Flush(ctx, outbox)

	return result, nil
}

func (h RespondToMatchCommandHandler) accept(
	ctx context.Context,
	uow UoW,
	candidate *matching.Candidate,
	actor kernel.Actor,
	now time.Time,
	outbox *events.Outbox,
) (*delivery.Delivery, error) {
	courier, err := uow.DelivererRepository().GetForUpdate(ctx, candidate.DelivererID())
	if err != nil {
		return nil, err
	}
	active, err := uow.DeliveryRepository().CountActiveByDeliverer(ctx, courier.ID())
	if err != nil {
		return nil, err
	}
	if err = courier.CheckCapacity(active); err != nil {
		return nil, err
	}

	a, err := uow.AnnouncementRepository().Get(ctx, candidate.AnnouncementID())
	if err != nil {
		return nil, err
	}
	if err = a.MarkMatched(); err != nil {
		return nil, err
	}

	delivererID := courier.ID()
	d, err := delivery.NewDelivery(
		kernel.NewUUID(), a.ID(), a.ClientID(), &delivererID,
		a.Pickup(), a.Dropoff(), a.PriceOrZero(), a.ScheduledDate(), now,
	)
	if err != nil {
		return nil, err
	}

	if err = uow.MatchRepository().SaveResponse(ctx, candidate); err != nil {
		return nil, err
	}
	if err = uow.AnnouncementRepository().Update(ctx, a); err != nil {
		return nil, err
	}
	if err = uow.DeliveryRepository().Add(ctx, d); err != nil {
		return nil, err
	}

	req := transitionRequest{
		to:      delivery.Assigned,
		actor:   actor,
		details: delivery.TransitionDetails{Notes: "match " + candidate.ID().String() + " accepted"},
	}
	if _, err = h.flow.transition(ctx, uow, d, req, now, outbox); err != nil {
		return nil, err
	}
	return d, nil
}
