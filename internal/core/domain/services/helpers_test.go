package services_test

import (
	"testing"
	"time"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var paris = struct{ lat, lng float64 }{48.8566, 2.3522}

func mustLocation(t *testing.T, lat, lng float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return loc
}

func mustAddress(t *testing.T, text string, loc *kernel.Location) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress(text, loc)
	require.NoError(t, err)
	return a
}

func newAnnouncement(t *testing.T, category string, pickup *kernel.Location) *announcement.Announcement {
	t.Helper()
	a, err := announcement.NewAnnouncement(announcement.Params{
		ID:       kernel.NewUUID(),
		ClientID: kernel.NewUUID(),
		Title:    "Parcel",
		Category: category,
		Pickup:   mustAddress(t, "pickup", pickup),
		Dropoff:  mustAddress(t, "dropoff", nil),
	}, time.Now())
	require.NoError(t, err)
	return a
}

func newDeliverer(t *testing.T, id kernel.UUID, loc *kernel.Location, categories ...string) *deliverer.Deliverer {
	t.Helper()
	d, err := deliverer.NewDeliverer(id, "Courier", true, loc, categories)
	require.NoError(t, err)
	return d
}

// offsetNorth returns a location meters north of (lat, lng).
func offsetNorth(t *testing.T, lat, lng, meters float64) kernel.Location {
	t.Helper()
	return mustLocation(t, lat+meters/111_195.0, lng)
}

func restoreDelivery(
	t *testing.T, status delivery.Status, current *kernel.Location, destination *kernel.Location, scheduled *time.Time,
) *delivery.Delivery {
	t.Helper()
	delivererID := kernel.NewUUID()
	d, err := delivery.RestoreDelivery(delivery.RestoreParams{
		ID:              kernel.NewUUID(),
		AnnouncementID:  kernel.NewUUID(),
		ClientID:        kernel.NewUUID(),
		DelivererID:     &delivererID,
		Status:          status,
		Pickup:          mustAddress(t, "pickup", nil),
		Dropoff:         mustAddress(t, "dropoff", destination),
		CurrentLocation: current,
		ScheduledDate:   scheduled,
		TrackingEnabled: true,
		TrackingCode:    "ECO1",
	})
	require.NoError(t, err)
	return d
}
