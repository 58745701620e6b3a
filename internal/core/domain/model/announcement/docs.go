// Package announcement contains the Announcement aggregate: a client's request to have
// a parcel carried from a pickup address to a dropoff address.
//
// An announcement starts OPEN, becomes MATCHED once a deliverer accepts a match proposal
// and a delivery is created from it, and may be CANCELLED by its client while still open.
package announcement
