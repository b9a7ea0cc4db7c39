package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Uploads and ingestion
	uploadsReceived   prometheus.Counter
	uploadsSucceeded  prometheus.Counter
	uploadsFailed     *prometheus.CounterVec
	uploadsDuplicate  prometheus.Counter
	rowsParsed        prometheus.Counter
	rowsSkipped       prometheus.Counter
	recordsDuplicate  prometheus.Counter
	ingestDuration    *prometheus.HistogramVec
	uploadBytes       prometheus.Histogram
	jobsRetained      prometheus.Gauge
	staleSwapsSkipped prometheus.Counter

	// Active dataset
	datasetRecords      prometheus.Gauge
	datasetDates        prometheus.Gauge
	datasetPlants       prometheus.Gauge
	datasetSwaps        prometheus.Counter
	datasetLastSwapUnix prometheus.Gauge
	datasetQueries      *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueWaitLatency   prometheus.Histogram

	// Workers
	workerCount       prometheus.Gauge
	workerActiveCount prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plantmetrics",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.uploadsReceived = auto.NewCounter(m.counterOpts("uploads_received_total", "Uploads accepted for ingestion"))
	m.uploadsSucceeded = auto.NewCounter(m.counterOpts("uploads_succeeded_total", "Uploads ingested successfully"))
	m.uploadsFailed = auto.NewCounterVec(m.counterOpts("uploads_failed_total", "Uploads rejected during ingestion"), []string{"reason"})
	m.uploadsDuplicate = auto.NewCounter(m.counterOpts("uploads_duplicate_total", "Uploads folded into an in-flight job with the same payload"))
	m.rowsParsed = auto.NewCounter(m.counterOpts("rows_parsed_total", "Input rows turned into records"))
	m.rowsSkipped = auto.NewCounter(m.counterOpts("rows_skipped_total", "Input rows too short to parse"))
	m.recordsDuplicate = auto.NewCounter(m.counterOpts("records_duplicate_total", "Records replaced by a later row for the same plant and date"))
	m.ingestDuration = auto.NewHistogramVec(m.histogramOpts("ingest_duration_milliseconds", "Time to decode, parse and process an upload", m.histogramBuckets), []string{"format"})
	m.uploadBytes = auto.NewHistogram(m.histogramOpts("upload_size_bytes", "Size of uploaded payloads", prometheus.ExponentialBuckets(1024, 4, 10)))
	m.jobsRetained = auto.NewGauge(m.gaugeOpts("jobs_retained", "Upload jobs kept for status queries"))
	m.staleSwapsSkipped = auto.NewCounter(m.counterOpts("stale_swaps_skipped_total", "Ingested datasets discarded because a newer one was active"))

	m.datasetRecords = auto.NewGauge(m.gaugeOpts("dataset_records", "Records in the active dataset"))
	m.datasetDates = auto.NewGauge(m.gaugeOpts("dataset_dates", "Distinct dates in the active dataset"))
	m.datasetPlants = auto.NewGauge(m.gaugeOpts("dataset_plants", "Distinct plants in the active dataset"))
	m.datasetSwaps = auto.NewCounter(m.counterOpts("dataset_swaps_total", "Times the active dataset was replaced"))
	m.datasetLastSwapUnix = auto.NewGauge(m.gaugeOpts("dataset_last_swap_unix", "Unix time of the last dataset swap"))
	m.datasetQueries = auto.NewCounterVec(m.counterOpts("dataset_queries_total", "Queries served from the active dataset"), []string{"query"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Uploads waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Uploads enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Uploads dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Uploads rejected by a full or closed queue"))
	m.queueWaitLatency = auto.NewHistogram(m.histogramOpts("queue_wait_milliseconds", "Time an upload spent queued", m.histogramBuckets))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured ingestion workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently ingesting"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Worker time per upload", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Uploads a worker failed to ingest"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Upload metrics.

// RecordUploadReceived counts an accepted upload and its size.
func RecordUploadReceived(size int) {
	globalManager.uploadsReceived.Inc()
	globalManager.uploadBytes.Observe(float64(size))
}

// RecordUploadSucceeded counts a successful ingestion.
func RecordUploadSucceeded() { globalManager.uploadsSucceeded.Inc() }

// RecordUploadFailed counts a rejected ingestion by reason.
func RecordUploadFailed(reason string) { globalManager.uploadsFailed.WithLabelValues(reason).Inc() }

// RecordUploadDuplicate counts an upload folded into an in-flight job.
func RecordUploadDuplicate() { globalManager.uploadsDuplicate.Inc() }

// RecordRows adds parsed and skipped row counts.
func RecordRows(parsed, skipped int) {
	globalManager.rowsParsed.Add(float64(parsed))
	globalManager.rowsSkipped.Add(float64(skipped))
}

// RecordDuplicateRecords adds records replaced by a later row.
func RecordDuplicateRecords(n int) { globalManager.recordsDuplicate.Add(float64(n)) }

// RecordIngestDuration observes ingestion time for a format.
func RecordIngestDuration(format string, ms float64) {
	globalManager.ingestDuration.WithLabelValues(format).Observe(ms)
}

// UpdateJobsRetained sets the number of retained jobs.
func UpdateJobsRetained(n int) { globalManager.jobsRetained.Set(float64(n)) }

// RecordStaleSwapSkipped counts a dataset dropped by the ordering guard.
func RecordStaleSwapSkipped() { globalManager.staleSwapsSkipped.Inc() }

// Dataset metrics.

// RecordDatasetSwap updates the active dataset gauges.
func RecordDatasetSwap(records, dates, plants int, unix float64) {
	globalManager.datasetSwaps.Inc()
	globalManager.datasetRecords.Set(float64(records))
	globalManager.datasetDates.Set(float64(dates))
	globalManager.datasetPlants.Set(float64(plants))
	globalManager.datasetLastSwapUnix.Set(unix)
}

// RecordDatasetQuery counts a read against the active dataset.
func RecordDatasetQuery(query string) { globalManager.datasetQueries.WithLabelValues(query).Inc() }

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueWait observes how long an upload waited before a worker took it.
func RecordQueueWait(ms float64) { globalManager.queueWaitLatency.Observe(ms) }

// Worker metrics.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker time per upload.
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
