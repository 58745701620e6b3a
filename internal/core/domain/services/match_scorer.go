package services

import (
	"cmp"
	"math"
	"slices"
	"time"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/errs"
)

// Component formulas of the weighted score.
const (
	// distancePenaltyPerKm is subtracted from 100 for every kilometer to the pickup.
	distancePenaltyPerKm = 2.0
	// ratingMultiplier maps a 0-5 rating onto 0-100.
	ratingMultiplier = 20.0

	preferenceMatchScore = 100.0
	preferenceMissScore  = 50.0
	routeMatchScore      = 100.0
	routeMissScore       = 30.0
)

// Contender is a deliverer considered for an announcement, together with the number
// of non-terminal deliveries it currently holds.
type Contender struct {
	Deliverer        *deliverer.Deliverer
	ActiveDeliveries int
}

// MatchScorer is a domain service ranking deliverers for an announcement with a
// weighted sum of five factors.
//
// Factors and weights:
//   - Distance (0.30): max(0, 100 - 2 * km) between the deliverer and the pickup
//   - Rating (0.25): average rating * 20, unrated deliverers count as 3
//   - Availability (0.20): 100 with an active availability window, 0 otherwise
//   - Preference (0.15): 100 when the category is preferred, 50 otherwise
//   - Route fit (0.10): 100 when the pickup lies in a route zone, 30 otherwise
//
// Ranking is deterministic: higher total first, then shorter distance (unknown
// distances last), then the deliverer id in ascending string order.
//
// Example usage:
//
//	scorer := services.NewMatchScorer()
//	best, err := scorer.Rank(ann, contenders, 5, time.Now())
//	if err != nil {
//	    return err
//	}
//	for _, c := range best {
//	    fmt.Println(c.DelivererID(), c.TotalScore())
//	}
type MatchScorer struct{}

// NewMatchScorer creates a new MatchScorer instance.
func NewMatchScorer() MatchScorer {
	return MatchScorer{}
}

// Score computes the candidate for one announcement and deliverer pair.
//
// Parameters:
//   - a: the announcement (its pickup coordinates drive distance and route fit)
//   - d: the deliverer being evaluated
//   - now: reference time for availability windows
//
// Returns:
//   - *matching.Candidate: a PENDING candidate with a fresh id
//   - error: validation error when either aggregate is not constructed
//
// Score does not check eligibility; Rank does.
func (s MatchScorer) Score(a *announcement.Announcement, d *deliverer.Deliverer, now time.Time) (*matching.Candidate, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	pickup := a.Pickup().Location()
	if !a.Pickup().IsGeocoded() {
		pickup = nil
	}

	var (
		scores     matching.Scores
		distanceKm *float64
		inRoute    bool
	)

	if pickup != nil && d.Location() != nil {
		km := kernel.DistanceMeters(*d.Location(), *pickup) / 1000
		distanceKm = &km
		scores.Distance = math.Max(0, 100-distancePenaltyPerKm*km)
	}

	scores.Rating = d.EffectiveRating() * ratingMultiplier

	available := d.HasActiveAvailability(now)
	if available {
		scores.Availability = 100
	}

	scores.Preference = preferenceMissScore
	if d.Prefers(a.Category()) {
		scores.Preference = preferenceMatchScore
	}

	scores.Route = routeMissScore
	if pickup != nil && d.CoversPoint(*pickup) {
		inRoute = true
		scores.Route = routeMatchScore
	}

	return matching.NewCandidate(matching.Params{
		ID:             kernel.NewUUID(),
		AnnouncementID: a.ID(),
		DelivererID:    d.ID(),
		Scores:         scores,
		DistanceKm:     distanceKm,
		IsInRoute:      inRoute,
		IsAvailable:    available,
		CalculatedAt:   now,
	})
}

// Rank scores every eligible contender and returns the best qualified candidates.
//
// Parameters:
//   - a: the announcement to match
//   - contenders: deliverers with their active delivery counts
//   - limit: maximum number of candidates returned, must be positive
//   - now: reference time for availability windows
//
// Returns:
//   - []*matching.Candidate: at most limit candidates with a total of at least
//     matching.MinScore, best first
//   - error: ValueIsOutOfRange for a non-positive limit, or a scoring error
//
// Inactive, unverified and at-capacity deliverers are skipped.
func (s MatchScorer) Rank(
	a *announcement.Announcement,
	contenders []Contender,
	limit int,
	now time.Time,
) ([]*matching.Candidate, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	ranked := make([]*matching.Candidate, 0, len(contenders))
	for _, c := range contenders {
		if err := c.Deliverer.Validate(); err != nil {
			return nil, err
		}
		if !c.Deliverer.IsEligible() || c.Deliverer.CheckCapacity(c.ActiveDeliveries) != nil {
			continue
		}

		candidate, err := s.Score(a, c.Deliverer, now)
		if err != nil {
			return nil, err
		}
		if candidate.IsQualified() {
			ranked = append(ranked, candidate)
		}
	}

	slices.SortStableFunc(ranked, CompareCandidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// CompareCandidates orders candidates best first: total score descending, distance
// ascending with unknown distances last, then deliverer id ascending.
func CompareCandidates(x, y *matching.Candidate) int {
	if c := cmp.Compare(y.TotalScore(), x.TotalScore()); c != 0 {
		return c
	}
	if c := cmp.Compare(distanceOrInf(x), distanceOrInf(y)); c != 0 {
		return c
	}
	return cmp.Compare(x.DelivererID().String(), y.DelivererID().String())
}

func distanceOrInf(c *matching.Candidate) float64 {
	if km := c.DistanceKm(); km != nil {
		return *km
	}
	return math.Inf(1)
}
