package matching

import "math"

// Factor weights. They sum to 1 so the total stays in [0, 100].
const (
	DistanceWeight     = 0.30
	RatingWeight       = 0.25
	AvailabilityWeight = 0.20
	PreferenceWeight   = 0.15
	RouteWeight        = 0.10
)

// MinScore is the lowest total a candidate needs to be proposed.
const MinScore = 60.0

// Scores is the per-factor breakdown of a candidate, each component in [0, 100].
type Scores struct {
	Distance     float64
	Rating       float64
	Availability float64
	Preference   float64
	Route        float64
}

// Clamp returns a copy with every component bounded to [0, 100].
func (s Scores) Clamp() Scores {
	return Scores{
		Distance:     clamp(s.Distance),
		Rating:       clamp(s.Rating),
		Availability: clamp(s.Availability),
		Preference:   clamp(s.Preference),
		Route:        clamp(s.Route),
	}
}

// Total is the weighted sum of the clamped components.
func (s Scores) Total() float64 {
	c := s.Clamp()
	return c.Distance*DistanceWeight +
		c.Rating*RatingWeight +
		c.Availability*AvailabilityWeight +
		c.Preference*PreferenceWeight +
		c.Route*RouteWeight
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
