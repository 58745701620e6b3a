// Package metrics exposes the service counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts dispatch outcomes and committed business events.
// It satisfies events.Recorder.
type Recorder struct {
	transitions       *prometheus.CounterVec
	locationPings     prometheus.Counter
	etaRecomputes     *prometheus.CounterVec
	candidatesScored  prometheus.Counter
	matchResponses    *prometheus.CounterVec
	dispatched        *prometheus.CounterVec
	dispatchFailures  *prometheus.CounterVec
	rateLimitExceeded prometheus.Counter
}

// NewRecorder creates the counters and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Total number of committed delivery status transitions",
		}, []string{"from", "to", "automatic"}),
		locationPings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_location_pings_total",
			Help: "Total number of accepted location pings",
		}),
		etaRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_eta_recomputes_total",
			Help: "Total number of stored ETA estimates",
		}, []string{"calculation_type"}),
		candidatesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of stored match candidates",
		}),
		matchResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_responses_total",
			Help: "Total number of deliverer answers to match proposals",
		}, []string{"decision"}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "side_effects_dispatched_total",
			Help: "Total number of broadcasts and notifications handed to their channel",
		}, []string{"channel", "name"}),
		dispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "side_effects_failed_total",
			Help: "Total number of broadcasts and notifications that could not be delivered",
		}, []string{"channel", "name"}),
		rateLimitExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of rejected HTTP requests due to rate limiting",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.transitions, r.locationPings, r.etaRecomputes, r.candidatesScored,
		r.matchResponses, r.dispatched, r.dispatchFailures, r.rateLimitExceeded,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Dispatched(kind, name string) {
	r.dispatched.WithLabelValues(kind, name).Inc()
}

func (r *Recorder) Failed(kind, name string) {
	r.dispatchFailures.WithLabelValues(kind, name).Inc()
}

func (r *Recorder) Transitioned(from, to string, automatic bool) {
	r.transitions.WithLabelValues(from, to, strconv.FormatBool(automatic)).Inc()
}

func (r *Recorder) LocationIngested() {
	r.locationPings.Inc()
}

func (r *Recorder) ETARecomputed(calculationType string) {
	r.etaRecomputes.WithLabelValues(calculationType).Inc()
}

func (r *Recorder) CandidatesScored(n int) {
	if n > 0 {
		r.candidatesScored.Add(float64(n))
	}
}

func (r *Recorder) MatchResponded(decision string) {
	r.matchResponses.WithLabelValues(decision).Inc()
}

// RateLimitExceeded counts a request rejected by the HTTP rate limiter.
func (r *Recorder) RateLimitExceeded() {
	r.rateLimitExceeded.Inc()
}
