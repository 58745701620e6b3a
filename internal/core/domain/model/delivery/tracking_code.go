package delivery

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// TrackingCodePrefix starts every public tracking code.
const TrackingCodePrefix = "ECO"

// NewTrackingCode returns "ECO" followed by a ULID, which sorts by creation time.
func NewTrackingCode(now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	return TrackingCodePrefix + id.String()
}
