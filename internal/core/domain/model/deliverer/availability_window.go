package deliverer

import (
	"errors"
	"fmt"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
	"ecodeli/internal/pkg/guard"
)

// ErrAvailabilityWindowIsNotConstructed is returned for zero-value windows.
var ErrAvailabilityWindowIsNotConstructed = errors.New(
	"AvailabilityWindow must be created via NewAvailabilityWindow constructor")

// AvailabilityWindow is a time range in which a deliverer declared itself available
// (or explicitly unavailable).
//
// Example:
//
//	w, err := deliverer.NewAvailabilityWindow(kernel.NewUUID(), start, start.Add(4*time.Hour), true)
type AvailabilityWindow struct {
	id          kernel.UUID
	start       time.Time
	end         time.Time
	isAvailable bool
	guard       guard.ConstructorGuard
}

// NewAvailabilityWindow validates that end is after start.
func NewAvailabilityWindow(id kernel.UUID, start, end time.Time, isAvailable bool) (*AvailabilityWindow, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, errs.NewValueIsInvalidErrorWithCause("availability",
			fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return &AvailabilityWindow{id: id, start: start, end: end, isAvailable: isAvailable, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the window was built through NewAvailabilityWindow.
func (w *AvailabilityWindow) Validate() error {
	if w == nil {
		return ErrAvailabilityWindowIsNotConstructed
	}
	return w.guard.Validate(ErrAvailabilityWindowIsNotConstructed)
}

// ID returns the window identifier.
func (w *AvailabilityWindow) ID() kernel.UUID { return w.id }

// Start returns the beginning of the window.
func (w *AvailabilityWindow) Start() time.Time { return w.start }

// End returns the end of the window.
func (w *AvailabilityWindow) End() time.Time { return w.end }

// IsAvailable reports whether the window declares availability.
func (w *AvailabilityWindow) IsAvailable() bool { return w.isAvailable }

// IsActiveAt reports an available window that has not expired at now.
// Windows starting later still count: the courier has committed to them.
func (w *AvailabilityWindow) IsActiveAt(now time.Time) bool {
	return w.isAvailable && w.end.After(now)
}
