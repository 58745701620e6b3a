package commands

import (
	"context"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
)

// RateDeliveryCommandHandler stores a rating and, when the deliverer is rated, folds
// the score into the deliverer's running average used by matching.
type RateDeliveryCommandHandler struct {
	uowFactory UoWFactory
}

func NewRateDeliveryCommandHandler(uowFactory UoWFactory) RateDeliveryCommandHandler {
	return RateDeliveryCommandHandler{uowFactory: uowFactory}
}

// Handle returns the stored rating.
//
// Returns:
//   - ValueIsInvalidError when the delivery is not DELIVERED or the actor already rated it
//   - PermissionDeniedError unless the actor is the client or the assigned deliverer
func (h RateDeliveryCommandHandler) Handle(ctx context.Context, cmd RateDeliveryCommand) (*delivery.Rating, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().Get(ctx, cmd.DeliveryID())
	if err != nil {
		return nil, err
	}

	rating, err := delivery.NewRating(d, cmd.Actor(), cmd.Score(), cmd.Comment(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err = uow.ProofRepository().AddRating(ctx, rating); err != nil {
		return nil, err
	}

	if courierID := d.DelivererID(); courierID != nil && rating.TargetID() == *courierID {
		courier, err := uow.DelivererRepository().Get(ctx, *courierID)
		if err != nil {
			return nil, err
		}
		if err = courier.ApplyRating(rating.Score()); err != nil {
			return nil, err
		}
		if err = uow.DelivererRepository().Update(ctx, courier); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return rating, nil
}
