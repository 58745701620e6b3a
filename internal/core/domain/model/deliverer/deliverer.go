package deliverer

import (
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

const (
	// MaxActiveDeliveries caps the number of non-terminal deliveries a deliverer may hold.
	MaxActiveDeliveries = 3
	// DefaultRating is used for scoring when the deliverer has never been rated.
	DefaultRating = 3.0
)

// Domain errors for deliverer operations.
var (
	// ErrNameIsRequired is returned when attempting to create a deliverer without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDelivererIsNotConstructed is returned when using an improperly initialized Deliverer.
	ErrDelivererIsNotConstructed = errors.New("Deliverer must be created via NewDeliverer constructor")
)

// Deliverer is the aggregate root describing a courier profile.
//
// Key responsibilities:
//   - Holding identity, verification and activity flags used by eligibility checks
//   - Tracking the idle position the matching engine measures distance from
//   - Keeping availability windows, route zones and preferred categories
//   - Maintaining a running average of received ratings
//
// Business rules:
//   - Name must be non-empty
//   - Only active and verified deliverers are eligible for matching
//   - Ratings are integers in [1, 5]; the average is recomputed incrementally
//
// Example usage:
//
//	loc, _ := kernel.NewLocation(48.8566, 2.3522)
//	d, err := deliverer.NewDeliverer(kernel.NewUUID(), "Alice", true, &loc, []string{"FOOD"})
//	if err != nil {
//	    // Handle construction error
//	}
type Deliverer struct {
	id                  kernel.UUID
	name                string
	active              bool
	verified            bool
	location            *kernel.Location
	preferredCategories []string
	averageRating       *float64
	ratingsCount        int
	availability        []*AvailabilityWindow
	routeZones          []RouteZone
	guard               guard.ConstructorGuard
}

// NewDeliverer creates an active deliverer with no ratings, windows or zones yet.
//
// Parameters:
//   - id: unique identifier, shared with the user account
//   - name: display name (must be non-empty)
//   - verified: whether the profile passed document checks
//   - location: idle position, may be nil until the first update
//   - preferredCategories: announcement categories the deliverer likes; compared case-insensitively
//
// Returns:
//   - *Deliverer: the new aggregate
//   - error: aggregated validation errors
func NewDeliverer(
	id kernel.UUID,
	name string,
	verified bool,
	location *kernel.Location,
	preferredCategories []string,
) (*Deliverer, error) {
	d := &Deliverer{
		active:   true,
		verified: verified,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.UpdateLocation(location),
	); err != nil {
		return nil, err
	}
	d.preferredCategories = normalizeCategories(preferredCategories)

	return d, nil
}

// RestoreParams carries the persisted state of a deliverer.
type RestoreParams struct {
	ID                  kernel.UUID
	Name                string
	Active              bool
	Verified            bool
	Location            *kernel.Location
	PreferredCategories []string
	AverageRating       *float64
	RatingsCount        int
	Availability        []*AvailabilityWindow
	RouteZones          []RouteZone
}

// RestoreDeliverer rebuilds a Deliverer loaded from storage.
//
// Returns:
//   - *Deliverer: the restored aggregate
//   - error: validation error when the stored state is inconsistent
func RestoreDeliverer(p RestoreParams) (*Deliverer, error) {
	d := &Deliverer{
		active:   p.Active,
		verified: p.Verified,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(p.ID),
		d.setName(p.Name),
		d.UpdateLocation(p.Location),
		d.setRating(p.AverageRating, p.RatingsCount),
	); err != nil {
		return nil, err
	}

	for _, w := range p.Availability {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	d.availability = slices.Clone(p.Availability)
	d.routeZones = slices.Clone(p.RouteZones)
	d.preferredCategories = normalizeCategories(p.PreferredCategories)

	return d, nil
}

// ID returns the deliverer identifier.
func (d *Deliverer) ID() kernel.UUID { return d.id }

// Name returns the display name.
func (d *Deliverer) Name() string { return d.name }

// IsActive reports whether the profile is enabled.
func (d *Deliverer) IsActive() bool { return d.active }

// IsVerified reports whether the profile passed verification.
func (d *Deliverer) IsVerified() bool { return d.verified }

// Location returns a copy of the idle position, or nil when unknown.
func (d *Deliverer) Location() *kernel.Location {
	if d.location == nil {
		return nil
	}
	loc := *d.location
	return &loc
}

// PreferredCategories returns a copy of the preferred categories.
func (d *Deliverer) PreferredCategories() []string { return slices.Clone(d.preferredCategories) }

// AverageRating returns the running average, or nil for an unrated deliverer.
func (d *Deliverer) AverageRating() *float64 {
	if d.averageRating == nil {
		return nil
	}
	v := *d.averageRating
	return &v
}

// RatingsCount returns how many ratings contributed to the average.
func (d *Deliverer) RatingsCount() int { return d.ratingsCount }

// Availability returns the declared availability windows.
func (d *Deliverer) Availability() []*AvailabilityWindow { return slices.Clone(d.availability) }

// RouteZones returns the declared route zones.
func (d *Deliverer) RouteZones() []RouteZone { return slices.Clone(d.routeZones) }

// IsEligible reports whether the deliverer may be matched at all.
func (d *Deliverer) IsEligible() bool {
	return d.active && d.verified
}

// EffectiveRating is the rating used for scoring: the average, or DefaultRating.
func (d *Deliverer) EffectiveRating() float64 {
	if d.averageRating == nil {
		return DefaultRating
	}
	return *d.averageRating
}

// HasActiveAvailability reports whether any available window has not expired at now.
func (d *Deliverer) HasActiveAvailability(now time.Time) bool {
	for _, w := range d.availability {
		if w.IsActiveAt(now) {
			return true
		}
	}
	return false
}

// Prefers reports whether category is among the preferred categories.
func (d *Deliverer) Prefers(category string) bool {
	return slices.Contains(d.preferredCategories, strings.ToUpper(strings.TrimSpace(category)))
}

// CoversPoint reports whether point lies inside any declared route zone.
func (d *Deliverer) CoversPoint(point kernel.Location) bool {
	for _, z := range d.routeZones {
		if z.Contains(point) {
			return true
		}
	}
	return false
}

// CheckCapacity returns CapacityExceededError when active already reaches MaxActiveDeliveries.
func (d *Deliverer) CheckCapacity(active int) error {
	if active >= MaxActiveDeliveries {
		return errs.NewCapacityExceededError(d.id, active, MaxActiveDeliveries)
	}
	return nil
}

// AddAvailability appends a window.
func (d *Deliverer) AddAvailability(w *AvailabilityWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	d.availability = append(d.availability, w)
	return nil
}

// AddRouteZone appends a zone.
func (d *Deliverer) AddRouteZone(z RouteZone) {
	d.routeZones = append(d.routeZones, z)
}

// UpdateLocation replaces the idle position. A nil location clears it.
func (d *Deliverer) UpdateLocation(location *kernel.Location) error {
	if location == nil {
		d.location = nil
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	d.location = &loc
	return nil
}

// SetActive enables or disables the profile.
func (d *Deliverer) SetActive(active bool) { d.active = active }

// Verify marks the profile as verified.
func (d *Deliverer) Verify() { d.verified = true }

// ApplyRating folds a new score into the running average.
//
// Example:
//
//	_ = d.ApplyRating(5) // average 5.0, count 1
//	_ = d.ApplyRating(3) // average 4.0, count 2
func (d *Deliverer) ApplyRating(score int) error {
	if score < 1 || score > 5 {
		return errs.NewValueIsOutOfRangeError("score", score, 1, 5)
	}
	total := float64(score)
	if d.averageRating != nil {
		total += *d.averageRating * float64(d.ratingsCount)
	}
	d.ratingsCount++
	avg := math.Round(total/float64(d.ratingsCount)*100) / 100
	d.averageRating = &avg
	return nil
}

// Validate ensures the deliverer was built through a constructor.
func (d *Deliverer) Validate() error {
	if d == nil {
		return ErrDelivererIsNotConstructed
	}
	return d.guard.Validate(ErrDelivererIsNotConstructed)
}

func (d *Deliverer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Deliverer) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Deliverer) setRating(avg *float64, count int) error {
	if count < 0 {
		return errs.NewValueIsOutOfRangeError("ratingsCount", count, 0, math.MaxInt)
	}
	if avg == nil {
		d.averageRating, d.ratingsCount = nil, 0
		return nil
	}
	if *avg < 1 || *avg > 5 {
		return errs.NewValueIsOutOfRangeError("averageRating", *avg, 1, 5)
	}
	v := *avg
	d.averageRating, d.ratingsCount = &v, count
	return nil
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
