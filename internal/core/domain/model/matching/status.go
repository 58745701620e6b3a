package matching

import (
	"fmt"
	"strings"

	"ecodeli/internal/pkg/errs"
)

// Status is the deliverer's response to a proposal.
type Status int

const (
	Unknown Status = iota
	Pending
	Accepted
	Declined
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "UNKNOWN",
		Pending:  "PENDING",
		Accepted: "ACCEPTED",
		Declined: "DECLINED",
	}
}

// ParseStatus reads a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid match status", s))
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if s <= Unknown || s > Declined {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid match status", s))
	}
	return nil
}

// Decision is the answer a deliverer gives to a proposal. Only Accepted and Declined are valid.
type Decision = Status
