package services

import (
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
)

const (
	// NearbyRadiusMeters moves an in-transit delivery to NEARBY.
	NearbyRadiusMeters = 300.0
	// ArrivedRadiusMeters moves a nearby delivery to ARRIVED.
	ArrivedRadiusMeters = 50.0
)

// ProximityAdvancer decides the automatic, forward-only status change caused by a
// position ping. It advances at most one step per ping.
type ProximityAdvancer struct{}

// NewProximityAdvancer creates a new ProximityAdvancer instance.
func NewProximityAdvancer() ProximityAdvancer {
	return ProximityAdvancer{}
}

// Proximity is the outcome of a proximity check.
type Proximity struct {
	// Next is the status to enter; only meaningful when Advance is true.
	Next    delivery.Status
	Advance bool
	// DistanceMeters is the measured distance to the destination, -1 when unknown.
	DistanceMeters float64
}

// Check compares the current position with the destination.
//
// Rules:
//   - IN_TRANSIT within 300 m advances to NEARBY
//   - NEARBY within 50 m advances to ARRIVED
//   - any other status, or a missing position or destination, does not advance
func (p ProximityAdvancer) Check(d *delivery.Delivery) Proximity {
	current, destination := d.CurrentLocation(), d.Destination()
	if current == nil || destination == nil {
		return Proximity{DistanceMeters: -1}
	}

	distance := kernel.DistanceMeters(*current, *destination)
	switch {
	case d.Status() == delivery.InTransit && distance <= NearbyRadiusMeters:
		return Proximity{Next: delivery.Nearby, Advance: true, DistanceMeters: distance}
	case d.Status() == delivery.Nearby && distance <= ArrivedRadiusMeters:
		return Proximity{Next: delivery.Arrived, Advance: true, DistanceMeters: distance}
	default:
		return Proximity{DistanceMeters: distance}
	}
}
