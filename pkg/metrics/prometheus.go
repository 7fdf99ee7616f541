// Package metrics provides Prometheus metrics for the postpulse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the postpulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingest metrics
	uploadsReceived  prometheus.Counter
	uploadsDuplicate prometheus.Counter
	uploadsFailed    *prometheus.CounterVec
	rowsReceived     prometheus.Counter
	rowsRejected     *prometheus.CounterVec
	postsAccepted    prometheus.Counter
	tagParseFailures prometheus.Counter

	// Report metrics
	reportBuildLatency prometheus.Histogram
	latestPostCount    prometheus.Gauge
	trackedUploads     prometheus.Gauge

	// LLM collaborator metrics
	llmRequests *prometheus.CounterVec
	llmLatency  prometheus.Histogram

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "postpulse",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if len(buckets) == 0 {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	msBuckets := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	m.uploadsReceived = auto.NewCounter(m.counterOpts("uploads_received_total", "Total number of uploads accepted for processing"))
	m.uploadsDuplicate = auto.NewCounter(m.counterOpts("uploads_duplicate_total", "Total number of uploads rejected as duplicates"))
	m.uploadsFailed = auto.NewCounterVec(m.counterOpts("uploads_failed_total", "Total number of uploads that failed processing by stage"), []string{"stage"})
	m.rowsReceived = auto.NewCounter(m.counterOpts("rows_received_total", "Total number of raw rows decoded from uploads"))
	m.rowsRejected = auto.NewCounterVec(m.counterOpts("rows_rejected_total", "Total number of raw rows excluded by the validator by reason"), []string{"reason"})
	m.postsAccepted = auto.NewCounter(m.counterOpts("posts_accepted_total", "Total number of canonical posts produced by the validator"))
	m.tagParseFailures = auto.NewCounter(m.counterOpts("tag_parse_failures_total", "Total number of rows whose tag JSON could not be parsed"))

	m.reportBuildLatency = auto.NewHistogram(m.histogramOpts("report_build_latency_milliseconds", "Time to compute the seven reports for an upload", msBuckets))
	m.latestPostCount = auto.NewGauge(m.gaugeOpts("latest_post_count", "Number of canonical posts in the current snapshot"))
	m.trackedUploads = auto.NewGauge(m.gaugeOpts("tracked_uploads", "Number of upload status records retained"))

	m.llmRequests = auto.NewCounterVec(m.counterOpts("llm_requests_total", "Total number of LLM analysis requests by outcome"), []string{"outcome"})
	m.llmLatency = auto.NewHistogram(m.histogramOpts("llm_latency_milliseconds", "LLM analysis request latency", msBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of uploads waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of uploads enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of uploads dequeued"))
	m.queueRejected = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of rejected enqueue attempts"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of upload workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "End-to-end processing latency of one upload", msBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker processing errors"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", msBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Total number of errors by component"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordUploadReceived counts an upload that entered the queue.
func (m *Manager) RecordUploadReceived() {
	if m.enabled {
		m.uploadsReceived.Inc()
	}
}

// RecordUploadDuplicate counts an upload rejected as a duplicate.
func (m *Manager) RecordUploadDuplicate() {
	if m.enabled {
		m.uploadsDuplicate.Inc()
	}
}

// RecordUploadFailed counts an upload that failed at the given stage.
func (m *Manager) RecordUploadFailed(stage string) {
	if m.enabled {
		m.uploadsFailed.WithLabelValues(stage).Inc()
	}
}

// RecordRowsReceived adds decoded raw rows.
func (m *Manager) RecordRowsReceived(n int) {
	if m.enabled && n > 0 {
		m.rowsReceived.Add(float64(n))
	}
}

// RecordRowsRejected adds rows excluded for reason.
func (m *Manager) RecordRowsRejected(reason string, n int) {
	if m.enabled && n > 0 {
		m.rowsRejected.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordPostsAccepted adds canonical posts.
func (m *Manager) RecordPostsAccepted(n int) {
	if m.enabled && n > 0 {
		m.postsAccepted.Add(float64(n))
	}
}

// RecordTagParseFailure counts a row with malformed tag JSON.
func (m *Manager) RecordTagParseFailure() {
	if m.enabled {
		m.tagParseFailures.Inc()
	}
}

// RecordReportBuildLatency observes the report computation time.
func (m *Manager) RecordReportBuildLatency(latencyMs float64) {
	if m.enabled {
		m.reportBuildLatency.Observe(latencyMs)
	}
}

// UpdateLatestPostCount sets the size of the current snapshot.
func (m *Manager) UpdateLatestPostCount(count int) {
	if m.enabled {
		m.latestPostCount.Set(float64(count))
	}
}

// UpdateTrackedUploads sets the number of retained upload status records.
func (m *Manager) UpdateTrackedUploads(count int) {
	if m.enabled {
		m.trackedUploads.Set(float64(count))
	}
}

// RecordLLMRequest counts an LLM request by outcome and observes its latency.
func (m *Manager) RecordLLMRequest(outcome string, latencyMs float64) {
	if m.enabled {
		m.llmRequests.WithLabelValues(outcome).Inc()
		m.llmLatency.Observe(latencyMs)
	}
}

// UpdateQueueSize sets the current queue size and utilization.
func (m *Manager) UpdateQueueSize(size, capacity int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
	if capacity > 0 {
		m.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func (m *Manager) UpdateQueueCapacity(capacity int) {
	if m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue counts an enqueued upload.
func (m *Manager) RecordQueueEnqueue() {
	if m.enabled {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a dequeued upload.
func (m *Manager) RecordQueueDequeue() {
	if m.enabled {
		m.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func (m *Manager) RecordQueueEnqueueError() {
	if m.enabled {
		m.queueRejected.Inc()
	}
}

// UpdateWorkerCount sets the number of workers.
func (m *Manager) UpdateWorkerCount(count int) {
	if m.enabled {
		m.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency observes the processing time of one upload.
func (m *Manager) RecordWorkerProcessingLatency(latencyMs float64) {
	if m.enabled {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError counts a worker processing error.
func (m *Manager) RecordWorkerError() {
	if m.enabled {
		m.workerErrors.Inc()
	}
}

// RecordHTTPRequest counts a request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error raised by component.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint counts an error response for endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers delegate to the global manager.

func RecordUploadReceived()                        { globalManager.RecordUploadReceived() }
func RecordUploadDuplicate()                       { globalManager.RecordUploadDuplicate() }
func RecordUploadFailed(stage string)              { globalManager.RecordUploadFailed(stage) }
func RecordRowsReceived(n int)                     { globalManager.RecordRowsReceived(n) }
func RecordRowsRejected(reason string, n int)      { globalManager.RecordRowsRejected(reason, n) }
func RecordPostsAccepted(n int)                    { globalManager.RecordPostsAccepted(n) }
func RecordTagParseFailure()                       { globalManager.RecordTagParseFailure() }
func RecordReportBuildLatency(latencyMs float64)   { globalManager.RecordReportBuildLatency(latencyMs) }
func UpdateLatestPostCount(count int)              { globalManager.UpdateLatestPostCount(count) }
func UpdateTrackedUploads(count int)               { globalManager.UpdateTrackedUploads(count) }
func RecordLLMRequest(outcome string, ms float64)  { globalManager.RecordLLMRequest(outcome, ms) }
func UpdateQueueSize(size, capacity int)           { globalManager.UpdateQueueSize(size, capacity) }
func UpdateQueueCapacity(capacity int)             { globalManager.UpdateQueueCapacity(capacity) }
func RecordQueueEnqueue()                          { globalManager.RecordQueueEnqueue() }
func RecordQueueDequeue()                          { globalManager.RecordQueueDequeue() }
func RecordQueueEnqueueError()                     { globalManager.RecordQueueEnqueueError() }
func UpdateWorkerCount(count int)                  { globalManager.UpdateWorkerCount(count) }
func RecordWorkerProcessingLatency(ms float64)     { globalManager.RecordWorkerProcessingLatency(ms) }
func RecordWorkerError()                           { globalManager.RecordWorkerError() }
func RecordErrorByComponent(component, kind string) { globalManager.RecordErrorByComponent(component, kind) }
func RecordErrorByEndpoint(endpoint, method, kind string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, kind)
}
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}
func UpdateSystemMemoryUsage(bytes uint64)  { globalManager.UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(count int)  { globalManager.UpdateSystemGoroutineCount(count) }
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
