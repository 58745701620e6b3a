// Package kernel provides the shared domain primitives of the dispatch service.
//
// The package includes:
//   - UUID: identifier value object used by every aggregate
//   - Location: a validated WGS84 latitude/longitude pair
//   - DistanceMeters, ETAMinutes, IsWithinRadius: pure geographic math used by
//     the tracking and matching engines
//   - Actor and Role: the caller identity resolved outside of the core
//
// All values are immutable and safe for concurrent use. Zero values are invalid
// and fail Validate, so objects must be built through their constructors.
package kernel
