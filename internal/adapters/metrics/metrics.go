// Package metrics counts cache and build events with Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

// Namespace prefixes every metric name.
const Namespace = "pac"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	hits      *prometheus.CounterVec
	misses    prometheus.Counter
	promoted  *prometheus.CounterVec
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
	builds    *prometheus.CounterVec

	mu       sync.Mutex
	textfile string
}

// New creates a Recorder.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "Artifacts found in a cache tier.",
		}, []string{"tier"}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_misses_total",
			Help:      "Artifacts found in no cache tier.",
		}),
		promoted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_promotions_total",
			Help:      "Artifacts copied from a remote tier into the local tier.",
		}, []string{"tier"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_publishes_total",
			Help:      "Artifacts published to a cache tier.",
		}, []string{"tier"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_tier_failures_total",
			Help:      "Cache tier operations that failed and were skipped.",
		}, []string{"tier"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "builds_total",
			Help:      "Compiler invocations by package and result.",
		}, []string{"package", "result"}),
	}

	r.registry.MustRegister(r.hits, r.misses, r.promoted, r.published, r.failures, r.builds)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SetTextfile makes Flush write the metrics to path in the text exposition format.
func (r *Recorder) SetTextfile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textfile = path
}

// CacheHit counts an artifact found in tier.
func (r *Recorder) CacheHit(tier string) { r.hits.WithLabelValues(tier).Inc() }

// CacheMiss counts an artifact found in no tier.
func (r *Recorder) CacheMiss() { r.misses.Inc() }

// Promoted counts an artifact promoted from tier.
func (r *Recorder) Promoted(tier string) { r.promoted.WithLabelValues(tier).Inc() }

// Published counts an artifact published to tier.
func (r *Recorder) Published(tier string) { r.published.WithLabelValues(tier).Inc() }

// TierFailure counts a skipped tier operation.
func (r *Recorder) TierFailure(tier string) { r.failures.WithLabelValues(tier).Inc() }

// Build counts a compiler invocation.
func (r *Recorder) Build(pkg string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	r.builds.WithLabelValues(pkg, result).Inc()
}

// Flush writes the metrics to the configured text file. Without one it does nothing.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	path := r.textfile
	r.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", path)
	}
	return nil
}
