// Package deliverer provides the Deliverer aggregate: the courier profile the matching
// engine scores against announcements.
//
// The package includes:
//   - Deliverer: identity, verification, idle position, preferred categories and rating stats
//   - AvailabilityWindow: an entity describing when the courier accepts work
//   - RouteZone: a circular zone the courier usually serves
//
// Key business rules:
//   - Only active and verified deliverers are considered for matching
//   - A deliverer holds at most MaxActiveDeliveries non-terminal deliveries at once
//   - An unrated deliverer is scored with DefaultRating
package deliverer
