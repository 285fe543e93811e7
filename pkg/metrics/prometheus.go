// Package metrics provides Prometheus metrics for the psychometrician service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Selection path label values.
const (
	PathAdaptive = "adaptive"
	PathFallback = "fallback"
	PathRandom   = "random"
)

// Generation outcome label values.
const (
	GenerationDone     = "done"
	GenerationFailed   = "failed"
	GenerationRejected = "rejected"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace         string
	subsystem         string
	latencyBuckets    []float64
	scoreBuckets      []float64
	generationBuckets []float64
	registry          prometheus.Registerer

	// Session Metrics
	sessionsStarted    prometheus.Counter
	sessionsCompleted  prometheus.Counter
	responsesRecorded  prometheus.Counter
	responsesDuplicate prometheus.Counter
	ticketRejections   *prometheus.CounterVec
	selections         *prometheus.CounterVec
	currentAbility     prometheus.Gauge
	domainScores       *prometheus.HistogramVec
	scoringLatency     prometheus.Histogram

	// Item Bank Metrics
	bankSize               prometheus.Gauge
	bankDomainSize         *prometheus.GaugeVec
	repositoryQueryLatency prometheus.Histogram
	repositoryWriteLatency prometheus.Histogram

	// Generation Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Generation Worker Metrics
	workerActiveCount  prometheus.Gauge
	generationOutcomes *prometheus.CounterVec
	generationLatency  prometheus.Histogram
	workerErrorRate    prometheus.Counter

	// HTTP Performance Metrics
	httpRequests         *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "psychometrician",
		subsystem:         "questionnaire",
		latencyBuckets:    defaultLatencyBuckets,
		scoreBuckets:      defaultScoreBuckets,
		generationBuckets: defaultGenerationBuckets,
		registry:          prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
		})
	}

	m.sessionsStarted = counter("sessions_started_total", "Total number of questionnaire sessions started")
	m.sessionsCompleted = counter("sessions_completed_total", "Total number of questionnaire sessions completed")
	m.responsesRecorded = counter("responses_recorded_total", "Total number of responses scored")
	m.responsesDuplicate = counter("responses_duplicate_total", "Total number of replayed responses acknowledged without scoring")
	m.ticketRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ticket_rejections_total",
		Help: "Responses rejected by the controller, by reason",
	}, []string{"reason"})
	m.selections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "selections_total",
		Help: "Items issued, by selection path",
	}, []string{"path"})
	m.currentAbility = gauge("current_ability", "Running ability estimate of the active session")
	m.domainScores = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "final_domain_score",
		Help:    "Domain scores of completed sessions",
		Buckets: m.scoreBuckets,
	}, []string{"domain"})
	m.scoringLatency = histogram("scoring_latency_milliseconds", "Time to score a response and rebuild the report", m.latencyBuckets)

	m.bankSize = gauge("bank_items", "Number of items in the item bank")
	m.bankDomainSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bank_domain_items",
		Help: "Number of items in the item bank per domain",
	}, []string{"domain"})
	m.repositoryQueryLatency = histogram("repository_query_latency_milliseconds", "Item bank read latency in milliseconds", m.latencyBuckets)
	m.repositoryWriteLatency = histogram("repository_write_latency_milliseconds", "Item bank append latency in milliseconds", m.latencyBuckets)

	m.queueSize = gauge("generation_queue_size", "Pending item generation requests")
	m.queueCapacity = gauge("generation_queue_capacity", "Maximum pending item generation requests")
	m.queueUtilization = gauge("generation_queue_utilization_ratio", "Generation queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = counter("generation_queue_enqueue_total", "Total number of generation requests enqueued")
	m.queueDequeueRate = counter("generation_queue_dequeue_total", "Total number of generation requests dequeued")
	m.queueEnqueueErrors = counter("generation_queue_enqueue_errors_total", "Total number of generation requests refused by the queue")

	m.workerActiveCount = gauge("generation_workers_active", "Number of running generation workers")
	m.generationOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "generations_total",
		Help: "Item generation requests by outcome",
	}, []string{"result"})
	m.generationLatency = histogram("generation_latency_milliseconds", "Item generation latency in milliseconds", m.generationBuckets)
	m.workerErrorRate = counter("generation_worker_errors_total", "Total number of generation worker errors")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_endpoint_total",
		Help: "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})
	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_component_total",
		Help: "Total number of errors by component",
	}, []string{"component", "error_type"})
}

// Session Metrics Functions.

// RecordSessionStarted increments the sessions started counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionCompleted increments the completed counter and observes the
// final domain scores.
func RecordSessionCompleted(domains map[string]float64) {
	globalManager.sessionsCompleted.Inc()
	for domain, score := range domains {
		globalManager.domainScores.WithLabelValues(domain).Observe(score)
	}
}

// RecordResponseRecorded increments the scored responses counter.
func RecordResponseRecorded() {
	globalManager.responsesRecorded.Inc()
}

// RecordResponseDuplicate increments the replayed responses counter.
func RecordResponseDuplicate() {
	globalManager.responsesDuplicate.Inc()
}

// RecordTicketRejected counts a response the controller refused.
func RecordTicketRejected(reason string) {
	globalManager.ticketRejections.WithLabelValues(reason).Inc()
}

// RecordSelection counts an issued item by the policy branch that chose it.
func RecordSelection(path string) error {
	switch path {
	case PathAdaptive, PathFallback, PathRandom:
	default:
		return ErrUnknownPath
	}
	globalManager.selections.WithLabelValues(path).Inc()
	return nil
}

// UpdateAbility sets the running ability gauge.
func UpdateAbility(ability float64) {
	globalManager.currentAbility.Set(ability)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// Item Bank Metrics Functions.

// UpdateBankSize sets the total number of bank items.
func UpdateBankSize(count int) {
	globalManager.bankSize.Set(float64(count))
}

// UpdateBankDomainSize sets the number of bank items in domain.
func UpdateBankDomainSize(domain string, count int) {
	globalManager.bankDomainSize.WithLabelValues(domain).Set(float64(count))
}

// RecordRepositoryQueryLatency records item bank read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositoryWriteLatency records item bank append latency.
func RecordRepositoryWriteLatency(latencyMs float64) {
	globalManager.repositoryWriteLatency.Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of running generation workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordGeneration counts a finished generation request by outcome.
func RecordGeneration(result string) {
	globalManager.generationOutcomes.WithLabelValues(result).Inc()
}

// RecordGenerationLatency records generation latency in milliseconds.
func RecordGenerationLatency(latencyMs float64) {
	globalManager.generationLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
