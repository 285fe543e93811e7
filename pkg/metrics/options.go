package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram buckets.
var (
	// Milliseconds; requests, scoring and bank access are sub-second.
	defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}
	// Scores live in [0,1]; the 0.3 and 0.7 band bounds are bucket edges.
	defaultScoreBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	// Milliseconds; a remote completer can take tens of seconds.
	defaultGenerationBuckets = []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}
)

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric name prefix. Empty keeps "psychometrician".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the second name segment. Empty keeps "questionnaire".
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the buckets of the HTTP, scoring and bank latency
// histograms.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithScoreBuckets sets the buckets of the final domain score histogram.
// Aligning them with configured band thresholds keeps band counts exact.
func WithScoreBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.scoreBuckets = buckets
		}
	}
}

// WithGenerationBuckets sets the buckets of the item generation latency
// histogram.
func WithGenerationBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.generationBuckets = buckets
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
