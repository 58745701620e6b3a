// Package matching holds MatchCandidate, the scored pairing of an announcement with a
// deliverer, and the weighted score breakdown behind it.
//
// A candidate is keyed by (announcement, deliverer): recomputing a score overwrites the
// stored breakdown while the response status survives.
package matching
