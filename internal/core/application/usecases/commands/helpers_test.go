package commands_test

import (
	"math"
	"testing"
	"time"

	"ecodeli/internal/core/domain/model/announcement"
	"ecodeli/internal/core/domain/model/deliverer"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

// Drop-off used by most fixtures: Avenue Foch, Paris.
const (
	destinationLat = 48.8718
	destinationLng = 2.2870
)

type fixture struct {
	t        *testing.T
	db       *memDB
	seed     seed
	client   kernel.Actor
	courier  kernel.Actor
	admin    kernel.Actor
	stranger kernel.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := newMemDB()
	return fixture{
		t:        t,
		db:       db,
		seed:     seed{t: t, db: db},
		client:   mustActor(t, kernel.RoleClient),
		courier:  mustActor(t, kernel.RoleDeliverer),
		admin:    mustActor(t, kernel.RoleAdmin),
		stranger: mustActor(t, kernel.RoleDeliverer),
	}
}

func mustActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

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

// north returns the point meters north of the destination.
func north(t *testing.T, meters float64) kernel.Location {
	t.Helper()
	const metersPerDegree = math.Pi * 6_371_000 / 180
	return mustLocation(t, destinationLat+meters/metersPerDegree, destinationLng)
}

type deliveryOption func(p *delivery.RestoreParams)

func at(loc kernel.Location) deliveryOption {
	return func(p *delivery.RestoreParams) {
		now := time.Now().UTC()
		p.CurrentLocation, p.LastLocationUpdate, p.TrackingStartedAt = &loc, &now, &now
	}
}

func withoutCoordinates() deliveryOption {
	return func(p *delivery.RestoreParams) {
		p.Dropoff, _ = kernel.NewAddress(p.Dropoff.Text(), nil)
	}
}

func trackingEnded() deliveryOption {
	return func(p *delivery.RestoreParams) {
		ended := time.Now().UTC().Add(-time.Hour)
		p.TrackingEnabled, p.TrackingEndedAt = false, &ended
	}
}

// delivery stores a delivery in the given status, assigned to f.courier.
func (f fixture) delivery(status delivery.Status, opts ...deliveryOption) *delivery.Delivery {
	f.t.Helper()
	destination := mustLocation(f.t, destinationLat, destinationLng)
	pickup := mustLocation(f.t, 48.8606, 2.3376)
	courierID := f.courier.ID()

	p := delivery.RestoreParams{
		ID:              kernel.NewUUID(),
		AnnouncementID:  kernel.NewUUID(),
		ClientID:        f.client.ID(),
		DelivererID:     &courierID,
		Status:          status,
		Pickup:          mustAddress(f.t, "1 Rue de Rivoli, Paris", &pickup),
		Dropoff:         mustAddress(f.t, "10 Avenue Foch, Paris", &destination),
		TrackingEnabled: true,
		Price:           15,
		TrackingCode:    delivery.NewTrackingCode(time.Now()),
		CreatedAt:       time.Now().UTC().Add(-2 * time.Hour),
		Version:         3,
	}
	for _, opt := range opts {
		opt(&p)
	}

	d, err := delivery.RestoreDelivery(p)
	require.NoError(f.t, err)
	f.seed.delivery(d)
	return d
}

// announcement stores an OPEN announcement of f.client with a pickup near the Louvre.
func (f fixture) announcement(category string) *announcement.Announcement {
	f.t.Helper()
	pickup := mustLocation(f.t, 48.8606, 2.3376)
	dropoff := mustLocation(f.t, destinationLat, destinationLng)
	price := 12.5

	a, err := announcement.NewAnnouncement(announcement.Params{
		ID:             kernel.NewUUID(),
		ClientID:       f.client.ID(),
		Title:          "Box of books",
		Category:       category,
		Pickup:         mustAddress(f.t, "1 Rue de Rivoli, Paris", &pickup),
		Dropoff:        mustAddress(f.t, "10 Avenue Foch, Paris", &dropoff),
		SuggestedPrice: &price,
	}, time.Now().UTC())
	require.NoError(f.t, err)
	f.seed.announcement(a)
	return a
}

// deliverer stores a verified deliverer with an active availability window.
func (f fixture) deliverer(id kernel.UUID, loc kernel.Location, categories ...string) *deliverer.Deliverer {
	f.t.Helper()
	d, err := deliverer.NewDeliverer(id, "Courier "+id.String()[:8], true, &loc, categories)
	require.NoError(f.t, err)

	now := time.Now().UTC()
	w, err := deliverer.NewAvailabilityWindow(kernel.NewUUID(), now.Add(-time.Hour), now.Add(4*time.Hour), true)
	require.NoError(f.t, err)
	require.NoError(f.t, d.AddAvailability(w))

	f.seed.deliverer(d)
	return d
}

// statusesOf returns the statuses recorded in the history of a delivery.
func statusesOf(s memState, deliveryID kernel.UUID) []delivery.Status {
	var out []delivery.Status
	for _, e := range s.history {
		if e.DeliveryID() == deliveryID {
			out = append(out, e.Status())
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
