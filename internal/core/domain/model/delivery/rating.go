package delivery

import (
	"errors"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrRatingIsNotConstructed is returned for zero-value ratings.
var ErrRatingIsNotConstructed = errors.New("Rating must be created via NewRating constructor")

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// Rating is the feedback one party of a completed delivery leaves about the other.
type Rating struct {
	id            kernel.UUID
	deliveryID    kernel.UUID
	raterID       kernel.UUID
	targetID      kernel.UUID
	score         int
	comment       string
	createdAt     time.Time
	isConstructed bool
}

// NewRating lets the client rate the deliverer or the deliverer rate the client.
//
// This function enforces the following business rules:
//   - the delivery is Delivered
//   - the rater is the client or the assigned deliverer
//   - the score is between 1 and 5
//
// The target is derived from the rater: the deliverer when the client rates,
// the client otherwise.
func NewRating(d *Delivery, rater kernel.Actor, score int, comment string, now time.Time) (*Rating, error) {
	if err := errors.Join(d.Validate(), rater.Validate()); err != nil {
		return nil, err
	}
	if d.Status() != Delivered {
		return nil, errs.NewValueIsInvalidErrorWithCause("status",
			errors.New("only delivered deliveries can be rated"))
	}
	if score < MinRatingScore || score > MaxRatingScore {
		return nil, errs.NewValueIsOutOfRangeError("rating", score, MinRatingScore, MaxRatingScore)
	}

	var target kernel.UUID
	switch {
	case rater.Is(d.ClientID()):
		target = *d.DelivererID()
	case rater.IsOneOf(d.DelivererID()):
		target = d.ClientID()
	default:
		return nil, errs.NewPermissionDeniedError(rater.ID().String(), "rate delivery")
	}

	return &Rating{
		id:            kernel.NewUUID(),
		deliveryID:    d.ID(),
		raterID:       rater.ID(),
		targetID:      target,
		score:         score,
		comment:       strings.TrimSpace(comment),
		createdAt:     now,
		isConstructed: true,
	}, nil
}

// RestoreRating rebuilds a stored rating.
func RestoreRating(
	id, deliveryID, raterID, targetID kernel.UUID, score int, comment string, createdAt time.Time,
) (*Rating, error) {
	if err := errors.Join(id.Validate(), deliveryID.Validate(), raterID.Validate(), targetID.Validate()); err != nil {
		return nil, err
	}
	if score < MinRatingScore || score > MaxRatingScore {
		return nil, errs.NewValueIsOutOfRangeError("rating", score, MinRatingScore, MaxRatingScore)
	}
	return &Rating{
		id: id, deliveryID: deliveryID, raterID: raterID, targetID: targetID,
		score: score, comment: comment, createdAt: createdAt, isConstructed: true,
	}, nil
}

// Validate ensures the rating was built through a constructor.
func (r *Rating) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRatingIsNotConstructed
	}
	return nil
}

func (r *Rating) ID() kernel.UUID         { return r.id }
func (r *Rating) DeliveryID() kernel.UUID { return r.deliveryID }
func (r *Rating) RaterID() kernel.UUID    { return r.raterID }
func (r *Rating) TargetID() kernel.UUID   { return r.targetID }
func (r *Rating) Score() int              { return r.score }
func (r *Rating) Comment() string         { return r.comment }
func (r *Rating) CreatedAt() time.Time    { return r.createdAt }
