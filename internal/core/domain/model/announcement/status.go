package announcement

import (
	"fmt"
	"strings"

	"ecodeli/internal/pkg/errs"
)

// Status represents the lifecycle state of an announcement.
//
// State transitions:
//
//	Open ──┬──> Matched
//	       └──> Cancelled
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	// Open announcements are visible to the matching engine.
	Open
	// Matched announcements have a delivery attached.
	Matched
	// Cancelled announcements were withdrawn by their client.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Open:      "OPEN",
		Matched:   "MATCHED",
		Cancelled: "CANCELLED",
	}
}

// ParseStatus converts a persisted status name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == strings.ToUpper(s) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the upper-case status name.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// move validates a transition out of Open.
func (s Status) move(to Status) (Status, error) {
	if s != Open {
		return Unknown, errs.NewInvalidTransitionError(s.String(), to.String())
	}
	return to, nil
}
