// Package metrics provides Prometheus metrics for the kickoff game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Game metrics
	sessionsStarted  prometheus.Counter
	sessionsActive   prometheus.Gauge
	matchesSimulated *prometheus.CounterVec
	transfers        *prometheus.CounterVec
	transfersBlocked *prometheus.CounterVec
	playbackFrames   prometheus.Counter
	playbackStreams  prometheus.Gauge

	// Content collaborator
	contentRequests *prometheus.CounterVec
	contentLatency  *prometheus.HistogramVec

	// Photo cache
	photoOps *prometheus.CounterVec

	// Job queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	jobsProcessed      *prometheus.CounterVec
	jobLatency         prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kickoff",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.sessionsStarted = m.counter("sessions_started_total", "Careers started")
	m.sessionsActive = m.gauge("sessions_active", "Sessions currently held in memory")
	m.matchesSimulated = m.counterVec("matches_simulated_total",
		"Match results produced, by event source (content, procedural, fallback)", "source")
	m.transfers = m.counterVec("transfers_total", "Completed transfers by kind", "kind")
	m.transfersBlocked = m.counterVec("transfers_rejected_total", "Transfers rejected by validation", "reason")
	m.playbackFrames = m.counter("playback_frames_total", "Sequencer frames streamed to clients")
	m.playbackStreams = m.gauge("playback_streams_active", "Open live playback streams")

	m.contentRequests = m.counterVec("content_requests_total",
		"Requests to the content generator by operation and outcome", "operation", "outcome")
	m.contentLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "content_latency_milliseconds",
		Help:      "Content generator round-trip latency in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"operation"})

	m.photoOps = m.counterVec("photo_store_operations_total", "Photo cache operations", "op", "outcome")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the simulation queue")
	m.queueCapacity = m.gauge("queue_capacity", "Simulation queue capacity")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rejected enqueues by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Simulation workers")
	m.jobsProcessed = m.counterVec("jobs_processed_total", "Jobs handled by workers", "kind", "outcome")
	m.jobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_latency_milliseconds",
		Help:      "Job processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordSessionStarted counts a new career.
func RecordSessionStarted() { globalManager.sessionsStarted.Inc() }

// UpdateActiveSessions sets the session gauge.
func UpdateActiveSessions(count int) { globalManager.sessionsActive.Set(float64(count)) }

// RecordMatchSimulated counts a produced match result by source.
func RecordMatchSimulated(source string) { globalManager.matchesSimulated.WithLabelValues(source).Inc() }

// RecordTransfer counts a completed buy or sell.
func RecordTransfer(kind string) { globalManager.transfers.WithLabelValues(kind).Inc() }

// RecordTransferRejected counts a transfer blocked by validation.
func RecordTransferRejected(reason string) { globalManager.transfersBlocked.WithLabelValues(reason).Inc() }

// RecordPlaybackFrame counts one streamed sequencer frame.
func RecordPlaybackFrame() { globalManager.playbackFrames.Inc() }

// AddPlaybackStreams adjusts the open stream gauge by delta.
func AddPlaybackStreams(delta int) { globalManager.playbackStreams.Add(float64(delta)) }

// RecordContentRequest counts a content call and observes its latency.
func RecordContentRequest(operation, outcome string, latencyMs float64) {
	globalManager.contentRequests.WithLabelValues(operation, outcome).Inc()
	globalManager.contentLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordPhotoOp counts a photo cache operation.
func RecordPhotoOp(op, outcome string) { globalManager.photoOps.WithLabelValues(op, outcome).Inc() }

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) { globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc() }

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordJobProcessed counts a handled job and its latency.
func RecordJobProcessed(kind, outcome string, latencyMs float64) {
	globalManager.jobsProcessed.WithLabelValues(kind, outcome).Inc()
	globalManager.jobLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
