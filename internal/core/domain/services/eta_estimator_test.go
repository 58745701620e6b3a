package services_test

import (
	"testing"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(t *testing.T, deliveryID kernel.UUID, at time.Time, speed *float64) *delivery.TrackingPosition {
	t.Helper()
	p, err := delivery.NewTrackingPosition(kernel.NewUUID(), deliveryID, mustLocation(t, 1, 1),
		delivery.Telemetry{Speed: speed}, at)
	require.NoError(t, err)
	return p
}

func TestAverageSpeedKmh(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id := kernel.NewUUID()

	tests := []struct {
		name      string
		positions []*delivery.TrackingPosition
		want      float64
	}{
		{name: "no positions", want: services.DefaultSpeedKmh},
		{
			name: "only zero and missing speeds",
			positions: []*delivery.TrackingPosition{
				position(t, id, now.Add(-time.Minute), ptr(0.0)),
				position(t, id, now.Add(-time.Minute), nil),
			},
			want: services.DefaultSpeedKmh,
		},
		{
			name: "averages recent positive speeds only",
			positions: []*delivery.TrackingPosition{
				position(t, id, now.Add(-time.Hour), ptr(100.0)),
				position(t, id, now.Add(-10*time.Minute), ptr(20.0)),
				position(t, id, now.Add(-5*time.Minute), ptr(40.0)),
				position(t, id, now.Add(-time.Minute), ptr(0.0)),
			},
			want: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, services.AverageSpeedKmh(tt.positions, now), 1e-9)
		})
	}
}

func TestETAEstimator_Estimate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	estimator := services.NewETAEstimator()
	destination := mustLocation(t, paris.lat, paris.lng)

	t.Run("real time estimate from distance and speed", func(t *testing.T) {
		current := offsetNorth(t, paris.lat, paris.lng, 10_000)
		d := restoreDelivery(t, delivery.InTransit, &current, &destination, nil)
		previousTime := now.Add(10 * time.Minute)
		previous, err := delivery.NewETA(delivery.ETAParams{
			DeliveryID: d.ID(), EstimatedTime: previousTime,
			Confidence: delivery.RealTimeConfidence, CalculationType: delivery.RealTime, CalculatedAt: now,
		})
		require.NoError(t, err)

		eta, err := estimator.Estimate(d, []*delivery.TrackingPosition{
			position(t, d.ID(), now.Add(-time.Minute), ptr(60.0)),
		}, previous, now)

		require.NoError(t, err)
		assert.Equal(t, delivery.RealTime, eta.CalculationType())
		assert.InDelta(t, delivery.RealTimeConfidence, eta.Confidence(), 1e-9)
		assert.Equal(t, delivery.TrafficLight, eta.TrafficCondition())
		require.NotNil(t, eta.DistanceRemainingKm())
		assert.InDelta(t, 10.0, *eta.DistanceRemainingKm(), 0.01)
		assert.WithinDuration(t, now.Add(10*time.Minute), eta.EstimatedTime(), 2*time.Second)
		require.NotNil(t, eta.PreviousEstimate())
		assert.Equal(t, previousTime, *eta.PreviousEstimate())
		assert.Equal(t, 0, eta.DelayMinutes())
	})

	t.Run("historical fallback uses the scheduled date", func(t *testing.T) {
		current := mustLocation(t, 1, 1)
		scheduled := now.Add(3 * time.Hour)
		d := restoreDelivery(t, delivery.InTransit, &current, nil, &scheduled)

		eta, err := estimator.Estimate(d, nil, nil, now)

		require.NoError(t, err)
		assert.Equal(t, delivery.Historical, eta.CalculationType())
		assert.InDelta(t, delivery.HistoricalConfidence, eta.Confidence(), 1e-9)
		assert.Equal(t, scheduled, eta.EstimatedTime())
		assert.Nil(t, eta.DistanceRemainingKm())
	})

	t.Run("historical fallback without schedule", func(t *testing.T) {
		current := mustLocation(t, 1, 1)
		d := restoreDelivery(t, delivery.InTransit, &current, nil, nil)

		eta, err := estimator.Estimate(d, nil, nil, now)

		require.NoError(t, err)
		assert.Equal(t, now.Add(30*time.Minute), eta.EstimatedTime())
	})

	t.Run("no position yet", func(t *testing.T) {
		d := restoreDelivery(t, delivery.InTransit, nil, &destination, nil)

		_, err := estimator.Estimate(d, nil, nil, now)

		require.ErrorIs(t, err, services.ErrPositionUnknown)
	})
}
