package matching

import (
	"errors"
	"math"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

// ErrCandidateIsNotConstructed is returned when using an improperly initialized Candidate.
var ErrCandidateIsNotConstructed = errors.New("Candidate must be created via NewCandidate constructor")

// Candidate is a scored proposal pairing an announcement with a deliverer.
//
// Business rules:
//   - TotalScore always equals Scores.Total()
//   - EstimatedMinutes is derived from the distance at two minutes per kilometer
//   - A candidate is answered once: PENDING moves to ACCEPTED or DECLINED and stays there
type Candidate struct {
	id               kernel.UUID
	announcementID   kernel.UUID
	delivererID      kernel.UUID
	scores           Scores
	distanceKm       *float64
	estimatedMinutes *int
	isInRoute        bool
	isAvailable      bool
	status           Status
	respondedAt      *time.Time
	calculatedAt     time.Time
	guard            guard.ConstructorGuard
}

// Params carries the inputs of a freshly computed candidate.
type Params struct {
	ID             kernel.UUID
	AnnouncementID kernel.UUID
	DelivererID    kernel.UUID
	Scores         Scores
	// DistanceKm is nil when the deliverer position is unknown.
	DistanceKm   *float64
	IsInRoute    bool
	IsAvailable  bool
	CalculatedAt time.Time
}

// NewCandidate builds a PENDING candidate from a score computation.
//
// Parameters:
//   - p: identifiers, component scores and the flags that produced them
//
// Returns:
//   - *Candidate: the scored candidate
//   - error: aggregated validation error for invalid identifiers or a negative distance
//
// Example:
//
//	km := 4.2
//	c, err := matching.NewCandidate(matching.Params{
//	    ID: kernel.NewUUID(), AnnouncementID: annID, DelivererID: delID,
//	    Scores: matching.Scores{Distance: 91.6, Rating: 80, Availability: 100, Preference: 50, Route: 30},
//	    DistanceKm: &km, CalculatedAt: time.Now(),
//	})
func NewCandidate(p Params) (*Candidate, error) {
	return RestoreCandidate(p, Pending, nil)
}

// RestoreCandidate rebuilds a stored candidate with its response state.
func RestoreCandidate(p Params, status Status, respondedAt *time.Time) (*Candidate, error) {
	problems := []error{
		p.ID.Validate(),
		p.AnnouncementID.Validate(),
		p.DelivererID.Validate(),
		status.Validate(),
	}
	if p.DistanceKm != nil && (*p.DistanceKm < 0 || math.IsNaN(*p.DistanceKm)) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("distanceKm", *p.DistanceKm, 0, "inf"))
	}
	if status == Pending && respondedAt != nil {
		problems = append(problems, errs.NewValueIsInvalidError("respondedAt"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	c := &Candidate{
		id:             p.ID,
		announcementID: p.AnnouncementID,
		delivererID:    p.DelivererID,
		scores:         p.Scores.Clamp(),
		isInRoute:      p.IsInRoute,
		isAvailable:    p.IsAvailable,
		status:         status,
		calculatedAt:   p.CalculatedAt,
		guard:          guard.NewConstructorGuard(),
	}
	if p.DistanceKm != nil {
		km := *p.DistanceKm
		minutes := EstimateMinutes(km)
		c.distanceKm, c.estimatedMinutes = &km, &minutes
	}
	if respondedAt != nil {
		t := *respondedAt
		c.respondedAt = &t
	}
	return c, nil
}

// Validate ensures the candidate was built through a constructor.
func (c *Candidate) Validate() error {
	if c == nil {
		return ErrCandidateIsNotConstructed
	}
	return c.guard.Validate(ErrCandidateIsNotConstructed)
}

func (c *Candidate) ID() kernel.UUID             { return c.id }
func (c *Candidate) AnnouncementID() kernel.UUID { return c.announcementID }
func (c *Candidate) DelivererID() kernel.UUID    { return c.delivererID }
func (c *Candidate) Scores() Scores              { return c.scores }
func (c *Candidate) TotalScore() float64         { return c.scores.Total() }
func (c *Candidate) IsInRoute() bool             { return c.isInRoute }
func (c *Candidate) IsAvailable() bool           { return c.isAvailable }
func (c *Candidate) Status() Status              { return c.status }
func (c *Candidate) CalculatedAt() time.Time     { return c.calculatedAt }

// DistanceKm returns the pickup distance, or nil when it could not be measured.
func (c *Candidate) DistanceKm() *float64 {
	if c.distanceKm == nil {
		return nil
	}
	v := *c.distanceKm
	return &v
}

// EstimatedMinutes returns the travel estimate to pickup, or nil.
func (c *Candidate) EstimatedMinutes() *int {
	if c.estimatedMinutes == nil {
		return nil
	}
	v := *c.estimatedMinutes
	return &v
}

// RespondedAt returns when the deliverer answered, or nil while pending.
func (c *Candidate) RespondedAt() *time.Time {
	if c.respondedAt == nil {
		return nil
	}
	v := *c.respondedAt
	return &v
}

// IsQualified reports whether the total reaches MinScore.
func (c *Candidate) IsQualified() bool {
	return c.TotalScore() >= MinScore
}

// Respond records the deliverer's decision.
//
// Returns:
//   - PermissionDeniedError when actor is not the proposed deliverer
//   - ValueIsInvalidError for a decision other than Accepted or Declined
//   - InvalidTransitionError when the candidate was already answered
func (c *Candidate) Respond(actor kernel.Actor, decision Decision, now time.Time) error {
	if !actor.Is(c.delivererID) {
		return errs.NewPermissionDeniedError(actor.ID().String(), "respond to match "+c.id.String())
	}
	if decision != Accepted && decision != Declined {
		return errs.NewValueIsInvalidErrorWithCause("decision", errors.New("must be ACCEPTED or DECLINED"))
	}
	if c.status != Pending {
		return errs.NewInvalidTransitionError(c.status.String(), decision.String())
	}
	c.status = decision
	t := now
	c.respondedAt = &t
	return nil
}

// EstimateMinutes converts a pickup distance into travel minutes at the
// assumed urban pace of 30 km/h.
func EstimateMinutes(km float64) int {
	return int(math.Round(km * 2))
}
