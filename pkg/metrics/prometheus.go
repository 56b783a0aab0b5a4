// Package metrics provides Prometheus metrics for the podium leaderboard
// engine.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Submission metrics
	submissionsTotal    prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	duplicateRequests   prometheus.Counter

	// Drain metrics
	updatesApplied   prometheus.Counter
	drainBatchSize   prometheus.Histogram
	drainLatency     prometheus.Histogram
	drainQuantiles   *prometheus.GaugeVec
	directAdds       prometheus.Counter
	playersRemoved   prometheus.Counter
	leaderboardClear prometheus.Counter

	// Rank index metrics
	activePlayers  prometheus.Gauge
	indexHeight    prometheus.Gauge
	indexOpLatency *prometheus.HistogramVec

	// Snapshot metrics
	snapshotPublished prometheus.Counter
	snapshotSize      prometheus.Gauge
	snapshotHits      prometheus.Counter

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueCompactions   prometheus.Counter

	// Worker metrics
	workerRunning    prometheus.Gauge
	workerCycles     prometheus.Counter
	workerErrorCount prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "leaderboard",
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.submissionsTotal = m.counter("submissions_total", "Total number of accepted score submissions")
	m.submissionsRejected = m.counterVec("submissions_rejected_total", "Score submissions rejected before queueing", "reason")
	m.duplicateRequests = m.counter("duplicate_requests_total", "Submissions dropped because their request id was already seen")

	m.updatesApplied = m.counter("updates_applied_total", "Total number of queued updates applied to the leaderboard")
	m.drainBatchSize = m.histogram("drain_batch_size", "Number of updates applied per drain call",
		[]float64{0, 1, 10, 100, 1000, 10000, 100000})
	m.drainLatency = m.histogram("drain_latency_milliseconds", "Time from submission to application in milliseconds", m.histogramBuckets)
	m.drainQuantiles = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "drain_latency_quantile_milliseconds",
		Help: "Estimated drain latency quantiles in milliseconds",
	}, []string{"quantile"})
	m.directAdds = m.counter("direct_adds_total", "Entries written without going through the queue")
	m.playersRemoved = m.counter("players_removed_total", "Players removed from the leaderboard")
	m.leaderboardClear = m.counter("clears_total", "Number of times the leaderboard was cleared")

	m.activePlayers = m.gauge("active_players", "Number of ranked players")
	m.indexHeight = m.gauge("index_height", "Height of the rank index tree")
	m.indexOpLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "index_operation_latency_milliseconds",
		Help:    "Rank index operation latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"operation"})

	m.snapshotPublished = m.counter("snapshot_published_total", "Total number of top-k snapshots published")
	m.snapshotSize = m.gauge("snapshot_size", "Number of entries in the current top-k snapshot")
	m.snapshotHits = m.counter("snapshot_hits_total", "Top queries served from the snapshot")

	m.queueSize = m.gauge("queue_size", "Current number of pending updates")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity (0 means unbounded)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of requests enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of requests dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueCompactions = m.counter("queue_compactions_total", "Total number of FIFO buffer compactions")

	m.workerRunning = m.gauge("worker_running", "1 while the background drain worker runs")
	m.workerCycles = m.counter("worker_cycles_total", "Drain cycles executed by the background worker")
	m.workerErrorCount = m.counter("worker_errors_total", "Total number of worker errors")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component",
		"component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordSubmission increments the accepted submissions counter.
func RecordSubmission() {
	globalManager.submissionsTotal.Inc()
}

// RecordSubmissionRejected counts a submission refused for reason.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordDuplicateRequest increments the duplicate request counter.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// RecordUpdateApplied increments the applied updates counter.
func RecordUpdateApplied() {
	globalManager.updatesApplied.Inc()
}

// RecordDrainBatch records how many updates one drain call applied.
func RecordDrainBatch(n int) {
	globalManager.drainBatchSize.Observe(float64(n))
}

// RecordDrainLatency records submission-to-application latency.
func RecordDrainLatency(latencyMs float64) {
	globalManager.drainLatency.Observe(latencyMs)
}

// UpdateDrainQuantile publishes an estimated latency quantile such as "0.99".
func UpdateDrainQuantile(quantile string, latencyMs float64) {
	globalManager.drainQuantiles.WithLabelValues(quantile).Set(latencyMs)
}

// RecordDirectAdd increments the direct add counter.
func RecordDirectAdd() {
	globalManager.directAdds.Inc()
}

// RecordPlayerRemoved increments the removed players counter.
func RecordPlayerRemoved() {
	globalManager.playersRemoved.Inc()
}

// RecordLeaderboardClear increments the clear counter.
func RecordLeaderboardClear() {
	globalManager.leaderboardClear.Inc()
}

// Rank index metrics.

// UpdateActivePlayers sets the number of ranked players.
func UpdateActivePlayers(count int) {
	globalManager.activePlayers.Set(float64(count))
}

// UpdateIndexHeight sets the rank index height.
func UpdateIndexHeight(height int) {
	globalManager.indexHeight.Set(float64(height))
}

// RecordIndexOperationLatency records the latency of a named index operation.
func RecordIndexOperationLatency(operation string, latencyMs float64) {
	globalManager.indexOpLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Snapshot metrics.

// RecordSnapshotPublished counts a snapshot publish of size entries.
func RecordSnapshotPublished(size int) {
	globalManager.snapshotPublished.Inc()
	globalManager.snapshotSize.Set(float64(size))
}

// RecordSnapshotHit counts a top query answered from the snapshot.
func RecordSnapshotHit() {
	globalManager.snapshotHits.Inc()
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
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

// RecordQueueCompaction increments the compaction counter.
func RecordQueueCompaction() {
	globalManager.queueCompactions.Inc()
}

// Worker metrics.

// UpdateWorkerRunning sets the worker running gauge.
func UpdateWorkerRunning(running bool) {
	if running {
		globalManager.workerRunning.Set(1)
		return
	}
	globalManager.workerRunning.Set(0)
}

// RecordWorkerCycle increments the worker drain cycle counter.
func RecordWorkerCycle() {
	globalManager.workerCycles.Inc()
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorCount.Inc()
}

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
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// SampleRuntime refreshes the system gauges from the Go runtime.
func SampleRuntime() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.HeapAlloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
