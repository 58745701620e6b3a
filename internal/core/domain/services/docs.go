// Package services provides domain services that implement business rules spanning
// several aggregates of the delivery system.
//
// The package includes:
//   - MatchScorer: scores and ranks deliverers against an announcement
//   - ETAEstimator: turns recent positions and the destination into a live estimate
//   - ProximityAdvancer: decides the forward-only status change triggered by a ping
//
// Domain services are stateless and never touch persistence: the application layer
// loads the aggregates, calls the service and stores the outcome.
package services
