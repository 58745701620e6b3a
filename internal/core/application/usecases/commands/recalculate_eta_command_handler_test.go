package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func recalculate(
	t *testing.T, f fixture, publisher *recordingPublisher, id kernel.UUID, actor *kernel.Actor,
) (*delivery.ETA, error) {
	t.Helper()
	cmd, err := commands.NewRecalculateETACommand(id, actor)
	require.NoError(t, err)
	return commands.NewRecalculateETACommandHandler(f.db.TrackingFactory(), publisher, nil).Handle(t.Context(), cmd)
}

func TestRecalculateETACommandHandler_Handle(t *testing.T) {
	t.Run("uses the average of recent speeds", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit, at(north(t, 3000)))
		now := time.Now().UTC()
		for _, speed := range []float64{10, 14} {
			p, err := delivery.NewTrackingPosition(kernel.NewUUID(), d.ID(), north(t, 3500),
				delivery.Telemetry{Speed: ptr(speed)}, now.Add(-5*time.Minute))
			require.NoError(t, err)
			f.seed.position(p)
		}
		publisher := &recordingPublisher{}

		eta, err := recalculate(t, f, publisher, d.ID(), &f.client)
		require.NoError(t, err)

		require.NotNil(t, eta)
		assert.Equal(t, delivery.TrafficHeavy, eta.TrafficCondition())
		assert.InDelta(t, 3.0, *eta.DistanceRemainingKm(), 0.01)
		// 3 km at 12 km/h.
		assert.WithinDuration(t, now.Add(15*time.Minute), eta.EstimatedTime(), 5*time.Second)

		assert.Equal(t, eta.EstimatedTime(), *f.db.delivery(t, d.ID()).EstimatedArrival())
		assert.Equal(t, []delivery.EventType{delivery.EventETAUpdate}, publisher.eventTypes())
	})

	t.Run("unusable geocoder result is reported and tolerated", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit, at(north(t, 3000)), withoutCoordinates())
		geocoder := new(MockGeocoder)
		geocoder.On("Geocode", mock.Anything, "10 Avenue Foch, Paris").Return(kernel.Location{}, nil)
		publisher := &recordingPublisher{}
		cmd, err := commands.NewRecalculateETACommand(d.ID(), nil)
		require.NoError(t, err)

		eta, err := commands.NewRecalculateETACommandHandler(f.db.TrackingFactory(), publisher, geocoder).
			Handle(t.Context(), cmd)
		require.NoError(t, err)

		require.NotNil(t, eta)
		assert.Nil(t, f.db.delivery(t, d.ID()).Destination())
		assert.Equal(t, []string{"geocoder returned an unusable destination"}, publisher.degradations)
		geocoder.AssertExpectations(t)
	})

	t.Run("geocoder failure is reported", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit, at(north(t, 3000)), withoutCoordinates())
		geocoder := new(MockGeocoder)
		geocoder.On("Geocode", mock.Anything, mock.Anything).Return(kernel.Location{}, errors.New("timeout"))
		publisher := &recordingPublisher{}
		cmd, err := commands.NewRecalculateETACommand(d.ID(), nil)
		require.NoError(t, err)

		_, err = commands.NewRecalculateETACommandHandler(f.db.TrackingFactory(), publisher, geocoder).
			Handle(t.Context(), cmd)
		require.NoError(t, err)

		assert.Equal(t, []string{"drop-off address could not be geocoded"}, publisher.degradations)
	})

	t.Run("keeps the replaced estimate", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Nearby, at(north(t, 200)))

		first, err := recalculate(t, f, &recordingPublisher{}, d.ID(), nil)
		require.NoError(t, err)
		second, err := recalculate(t, f, &recordingPublisher{}, d.ID(), nil)
		require.NoError(t, err)

		require.NotNil(t, second.PreviousEstimate())
		assert.Equal(t, first.EstimatedTime(), *second.PreviousEstimate())
	})

	t.Run("no position yields nothing", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit)
		publisher := &recordingPublisher{}

		eta, err := recalculate(t, f, publisher, d.ID(), nil)
		require.NoError(t, err)
		assert.Nil(t, eta)
		assert.Empty(t, f.db.state().etas)
		assert.Zero(t, publisher.flushes)
	})

	t.Run("ended tracking yields nothing", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Delivered, at(north(t, 10)), trackingEnded())

		eta, err := recalculate(t, f, &recordingPublisher{}, d.ID(), nil)
		require.NoError(t, err)
		assert.Nil(t, eta)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit, at(north(t, 1000)))

		_, err := recalculate(t, f, &recordingPublisher{}, d.ID(), &f.stranger)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})
}

type MockETARecalculator struct{ mock.Mock }

func (m *MockETARecalculator) Handle(ctx context.Context, cmd commands.RecalculateETACommand) (*delivery.ETA, error) {
	args := m.Called(ctx, cmd)
	eta, _ := args.Get(0).(*delivery.ETA)
	return eta, args.Error(1)
}

func TestRefreshActiveETAsCommandHandler_Handle(t *testing.T) {
	t.Run("refreshes every in-flight delivery", func(t *testing.T) {
		f := newFixture(t)
		moving := f.delivery(delivery.InTransit, at(north(t, 4000)))
		nearby := f.delivery(delivery.Nearby, at(north(t, 100)))
		f.delivery(delivery.PickedUp, at(north(t, 9000)))
		f.delivery(delivery.Nearby, at(north(t, 100)), trackingEnded())
		recalculator := commands.NewRecalculateETACommandHandler(f.db.TrackingFactory(), &recordingPublisher{}, nil)

		res, err := commands.NewRefreshActiveETAsCommandHandler(f.db.TrackingFactory(), recalculator).Handle(t.Context())
		require.NoError(t, err)

		assert.Equal(t, commands.RefreshActiveETAsResult{Candidates: 2, Refreshed: 2}, res)
		etas := f.db.state().etas
		assert.Len(t, etas, 2)
		assert.Contains(t, etas, moving.ID())
		assert.Contains(t, etas, nearby.ID())
	})

	t.Run("one failure does not stop the pass", func(t *testing.T) {
		f := newFixture(t)
		failing := f.delivery(delivery.InTransit, at(north(t, 4000)))
		healthy := f.delivery(delivery.InTransit, at(north(t, 2000)))
		eta, err := delivery.NewETA(delivery.ETAParams{
			DeliveryID:      healthy.ID(),
			EstimatedTime:   time.Now().Add(time.Minute),
			Confidence:      delivery.RealTimeConfidence,
			CalculationType: delivery.RealTime,
			CalculatedAt:    time.Now(),
		})
		require.NoError(t, err)

		recalculator := new(MockETARecalculator)
		conflict := errs.NewConcurrentModificationError("delivery", failing.ID())
		recalculator.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.RecalculateETACommand) bool {
			return c.DeliveryID() == failing.ID() && c.Actor() == nil
		})).Return(nil, conflict)
		recalculator.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.RecalculateETACommand) bool {
			return c.DeliveryID() == healthy.ID()
		})).Return(eta, nil)

		res, err := commands.NewRefreshActiveETAsCommandHandler(f.db.TrackingFactory(), recalculator).Handle(t.Context())

		require.ErrorIs(t, err, errs.ErrConcurrentModification)
		assert.Equal(t, commands.RefreshActiveETAsResult{Candidates: 2, Refreshed: 1}, res)
		recalculator.AssertNumberOfCalls(t, "Handle", 2)
	})

	t.Run("cancelled context stops the pass", func(t *testing.T) {
		f := newFixture(t)
		f.delivery(delivery.InTransit, at(north(t, 4000)))
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		recalculator := new(MockETARecalculator)
		_, err := commands.NewRefreshActiveETAsCommandHandler(f.db.TrackingFactory(), recalculator).Handle(ctx)

		require.True(t, errors.Is(err, context.Canceled))
		recalculator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}
