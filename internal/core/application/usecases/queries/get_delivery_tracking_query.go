// Package queries contains read operations for retrieving system state.
// Handlers read straight from the tables with SQL and return read models;
// they never load aggregates. Every read that names a delivery applies the
// same visibility rule as the commands: its client, its deliverer or an admin.
package queries

import (
	"errors"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/guard"
)

var ErrGetDeliveryTrackingQueryIsNotConstructed = errors.New(
	"GetDeliveryTrackingQuery must be created via NewGetDeliveryTrackingQuery constructor",
)

// GetDeliveryTrackingQuery asks for the live view of one delivery.
//
// Example:
//
//	query, err := NewGetDeliveryTrackingQuery(deliveryID, actor)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetDeliveryTrackingQueryHandler(db).Handle(ctx, query)
type GetDeliveryTrackingQuery struct {
	deliveryID kernel.UUID
	actor      kernel.Actor
	guard      guard.ConstructorGuard
}

// NewGetDeliveryTrackingQuery validates the identifiers.
func NewGetDeliveryTrackingQuery(deliveryID kernel.UUID, actor kernel.Actor) (GetDeliveryTrackingQuery, error) {
	if err := errors.Join(deliveryID.Validate(), actor.Validate()); err != nil {
		return GetDeliveryTrackingQuery{}, err
	}
	return GetDeliveryTrackingQuery{deliveryID: deliveryID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryTrackingQuery) DeliveryID() kernel.UUID { return q.deliveryID }
func (q GetDeliveryTrackingQuery) Actor() kernel.Actor     { return q.actor }

// Validate ensures the query was created through the constructor.
func (q GetDeliveryTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryTrackingQueryIsNotConstructed)
}

// ETAView is the live estimate of a delivery.
type ETAView struct {
	EstimatedTime       time.Time
	PreviousEstimate    *time.Time
	DistanceRemainingKm *float64
	TrafficCondition    delivery.TrafficCondition
	Confidence          float64
	CalculationType     delivery.CalculationType
	CalculatedAt        time.Time
}

// PositionView is one recorded ping.
type PositionView struct {
	Location   kernel.Location
	Accuracy   *float64
	Heading    *float64
	Speed      *float64
	Altitude   *float64
	RecordedAt time.Time
}

// GetDeliveryTrackingQueryResponse is the tracking screen of a delivery: the
// delivery itself, its live ETA and its most recent position, when known.
type GetDeliveryTrackingQueryResponse struct {
	ID                 kernel.UUID
	TrackingCode       string
	Status             delivery.Status
	ClientID           kernel.UUID
	DelivererID        *kernel.UUID
	PickupAddress      string
	DropoffAddress     string
	CurrentLocation    *kernel.Location
	LastLocationUpdate *time.Time
	EstimatedArrival   *time.Time
	ActualArrival      *time.Time
	TrackingEnabled    bool
	ETA                *ETAView
	LastPosition       *PositionView
}
