// Package metrics exposes Prometheus instrumentation for a Client: request
// counts and latencies per backend, cache hit/miss counts, and streaming
// event counts. A zero-value Registry is unwired — callers must construct
// one with New and thread it through their own Client wrapper to record
// observations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus collectors for one façade instance.
type Registry struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	StreamEventsTotal  *prometheus.CounterVec
}

// New creates a Registry and registers all of its collectors against reg.
// Pass prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer for a process-wide one.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmbridge",
			Name:      "requests_total",
			Help:      "Total chat requests issued, by backend and outcome.",
		}, []string{"backend", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llmbridge",
			Name:      "request_duration_seconds",
			Help:      "Chat request latency, by backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llmbridge",
			Name:      "cache_hits_total",
			Help:      "Response cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llmbridge",
			Name:      "cache_misses_total",
			Help:      "Response cache misses.",
		}),
		StreamEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmbridge",
			Name:      "stream_events_total",
			Help:      "Streaming events emitted, by backend and event kind.",
		}, []string{"backend", "kind"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.CacheHitsTotal,
		r.CacheMissesTotal,
		r.StreamEventsTotal,
	)
	return r
}

// ObserveRequest records one completed chat request's latency and outcome.
func (r *Registry) ObserveRequest(backend string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.RequestsTotal.WithLabelValues(backend, outcome).Inc()
	r.RequestDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveCache records a cache lookup outcome.
func (r *Registry) ObserveCache(hit bool) {
	if hit {
		r.CacheHitsTotal.Inc()
		return
	}
	r.CacheMissesTotal.Inc()
}

// ObserveStreamEvent records one streaming event of the given kind.
func (r *Registry) ObserveStreamEvent(backend, kind string) {
	r.StreamEventsTotal.WithLabelValues(backend, kind).Inc()
}
