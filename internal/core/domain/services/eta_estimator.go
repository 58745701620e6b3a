package services

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
)

const (
	// RecentPositionsWindow bounds the positions used for the average speed.
	RecentPositionsWindow = 30 * time.Minute
	// DefaultSpeedKmh is used when no recent position reports a positive speed.
	DefaultSpeedKmh = 30.0
	// historicalFallback is added to now when a historical estimate has no scheduled date.
	historicalFallback = 30 * time.Minute
)

// ErrPositionUnknown is returned when a delivery has no reported position yet.
var ErrPositionUnknown = errors.New("delivery position is unknown")

// ETAEstimator computes live arrival estimates.
//
// With a geocoded destination the estimate is REAL_TIME: the remaining distance is
// divided by the average positive speed of the last 30 minutes (30 km/h by default)
// and traffic is classified from that average. Without destination coordinates it
// falls back to a HISTORICAL estimate at the scheduled date, or 30 minutes from now.
type ETAEstimator struct{}

// NewETAEstimator creates a new ETAEstimator instance.
func NewETAEstimator() ETAEstimator {
	return ETAEstimator{}
}

// Estimate computes the next estimate for d.
//
// Parameters:
//   - d: the delivery, with its current position and destination
//   - positions: recent TrackingPosition rows; rows older than RecentPositionsWindow are ignored
//   - previous: the live estimate being replaced, may be nil
//   - now: calculation time
//
// Returns:
//   - *delivery.ETA: the new estimate carrying the replaced one as PreviousEstimate
//   - error: ErrPositionUnknown when the delivery has no current position
func (e ETAEstimator) Estimate(
	d *delivery.Delivery,
	positions []*delivery.TrackingPosition,
	previous *delivery.ETA,
	now time.Time,
) (*delivery.ETA, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	current := d.CurrentLocation()
	if current == nil {
		return nil, ErrPositionUnknown
	}

	prevEstimate := d.EstimatedArrival()
	if previous != nil {
		t := previous.EstimatedTime()
		prevEstimate = &t
	}

	destination := d.Destination()
	if destination == nil {
		estimated := now.Add(historicalFallback)
		if scheduled := d.ScheduledDate(); scheduled != nil {
			estimated = *scheduled
		}
		return delivery.NewETA(delivery.ETAParams{
			DeliveryID:       d.ID(),
			EstimatedTime:    estimated,
			PreviousEstimate: prevEstimate,
			TrafficCondition: delivery.TrafficModerate,
			Confidence:       delivery.HistoricalConfidence,
			CalculationType:  delivery.Historical,
			CalculatedAt:     now,
		})
	}

	speed := AverageSpeedKmh(positions, now)
	meters := kernel.DistanceMeters(*current, *destination)
	minutes := kernel.ETAMinutes(meters, speed)
	km := meters / 1000

	return delivery.NewETA(delivery.ETAParams{
		DeliveryID:          d.ID(),
		EstimatedTime:       now.Add(time.Duration(minutes * float64(time.Minute))),
		PreviousEstimate:    prevEstimate,
		DistanceRemainingKm: &km,
		TrafficCondition:    delivery.ClassifyTraffic(speed),
		Confidence:          delivery.RealTimeConfidence,
		CalculationType:     delivery.RealTime,
		CalculatedAt:        now,
	})
}

// AverageSpeedKmh averages the positive speeds reported within RecentPositionsWindow
// before now, or returns DefaultSpeedKmh when none qualify.
func AverageSpeedKmh(positions []*delivery.TrackingPosition, now time.Time) float64 {
	since := now.Add(-RecentPositionsWindow)
	var (
		sum   float64
		count int
	)
	for _, p := range positions {
		if p.Timestamp().Before(since) || !p.HasPositiveSpeed() {
			continue
		}
		sum += *p.Telemetry().Speed
		count++
	}
	if count == 0 {
		return DefaultSpeedKmh
	}
	return sum / float64(count)
}
