package delivery

import (
	"errors"
	"fmt"
	"math"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrETAIsNotConstructed is returned for zero-value estimates.
var ErrETAIsNotConstructed = errors.New("ETA must be created via NewETA constructor")

// TrafficCondition classifies the average courier speed.
type TrafficCondition string

const (
	TrafficLight    TrafficCondition = "LIGHT"
	TrafficModerate TrafficCondition = "MODERATE"
	TrafficHeavy    TrafficCondition = "HEAVY"
)

// ClassifyTraffic maps an average speed in km/h to a traffic condition:
// above 40 is light, below 20 is heavy, anything else moderate.
func ClassifyTraffic(avgSpeedKmh float64) TrafficCondition {
	switch {
	case avgSpeedKmh > 40:
		return TrafficLight
	case avgSpeedKmh < 20:
		return TrafficHeavy
	default:
		return TrafficModerate
	}
}

// CalculationType tells how an estimate was produced.
type CalculationType string

const (
	// RealTime estimates come from live positions and the geocoded destination.
	RealTime CalculationType = "REAL_TIME"
	// Historical estimates fall back on the scheduled date.
	Historical CalculationType = "HISTORICAL"
)

const (
	RealTimeConfidence   = 0.8
	HistoricalConfidence = 0.5
)

// ETA is the single live estimate of a delivery. Recomputing replaces it and keeps
// the replaced estimate as PreviousEstimate for delay reporting.
type ETA struct {
	deliveryID          kernel.UUID
	estimatedTime       time.Time
	previousEstimate    *time.Time
	distanceRemainingKm *float64
	trafficCondition    TrafficCondition
	confidence          float64
	calculationType     CalculationType
	calculatedAt        time.Time
	isConstructed       bool
}

// ETAParams groups the fields of an estimate.
type ETAParams struct {
	DeliveryID          kernel.UUID
	EstimatedTime       time.Time
	PreviousEstimate    *time.Time
	DistanceRemainingKm *float64
	TrafficCondition    TrafficCondition
	Confidence          float64
	CalculationType     CalculationType
	CalculatedAt        time.Time
}

// NewETA validates an estimate. Confidence must be in [0, 1] and the distance, when
// present, must not be negative.
func NewETA(p ETAParams) (*ETA, error) {
	if err := p.DeliveryID.Validate(); err != nil {
		return nil, err
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return nil, errs.NewValueIsOutOfRangeError("confidence", p.Confidence, 0, 1)
	}
	if p.DistanceRemainingKm != nil && *p.DistanceRemainingKm < 0 {
		return nil, errs.NewValueIsOutOfRangeError("distanceRemainingKm", *p.DistanceRemainingKm, 0, "unbounded")
	}
	switch p.CalculationType {
	case RealTime, Historical:
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("calculationType",
			fmt.Errorf("%q is not a calculation type", p.CalculationType))
	}
	switch p.TrafficCondition {
	case TrafficLight, TrafficModerate, TrafficHeavy, "":
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("trafficCondition",
			fmt.Errorf("%q is not a traffic condition", p.TrafficCondition))
	}

	return &ETA{
		deliveryID:          p.DeliveryID,
		estimatedTime:       p.EstimatedTime,
		previousEstimate:    copyTime(p.PreviousEstimate),
		distanceRemainingKm: p.DistanceRemainingKm,
		trafficCondition:    p.TrafficCondition,
		confidence:          p.Confidence,
		calculationType:     p.CalculationType,
		calculatedAt:        p.CalculatedAt,
		isConstructed:       true,
	}, nil
}

// Validate ensures the estimate was built through NewETA.
func (e *ETA) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrETAIsNotConstructed
	}
	return nil
}

func (e *ETA) DeliveryID() kernel.UUID            { return e.deliveryID }
func (e *ETA) EstimatedTime() time.Time           { return e.estimatedTime }
func (e *ETA) PreviousEstimate() *time.Time       { return copyTime(e.previousEstimate) }
func (e *ETA) DistanceRemainingKm() *float64      { return e.distanceRemainingKm }
func (e *ETA) TrafficCondition() TrafficCondition { return e.trafficCondition }
func (e *ETA) Confidence() float64                { return e.confidence }
func (e *ETA) CalculationType() CalculationType   { return e.calculationType }
func (e *ETA) CalculatedAt() time.Time            { return e.calculatedAt }

// DelayMinutes returns the signed change against the previous estimate, rounded to
// whole minutes. Positive means later than previously announced; zero without a
// previous estimate.
func (e *ETA) DelayMinutes() int {
	if e.previousEstimate == nil {
		return 0
	}
	return int(math.Round(e.estimatedTime.Sub(*e.previousEstimate).Minutes()))
}
