// Package metrics provides Prometheus metrics for the fest service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by fetch/upload/recalculation counters.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Manager manages all Prometheus metrics for the fest service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	rateLimited         prometheus.Counter
	idempotentReplays   prometheus.Counter

	// Sources and merge
	sheetFetches     *prometheus.CounterVec
	sheetLatency     prometheus.Histogram
	sheetRows        prometheus.Gauge
	mergeRecords     *prometheus.GaugeVec
	mergeCollisions  prometheus.Counter
	sourceDegraded   *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	pointsComputed   prometheus.Counter
	recalcRecords    *prometheus.CounterVec
	recalcLatency    prometheus.Histogram
	storeLatency     *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	storeSubscribers prometheus.Gauge

	// Live pipeline
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueue            prometheus.Counter
	queueDequeue            prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	snapshotRebuilds        prometheus.Counter
	snapshotLastUnix        prometheus.Gauge
	snapshotIndividuals     prometheus.Gauge
	wsClients               prometheus.Gauge
	wsBroadcasts            prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fest",
		subsystem:        "api",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
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

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("http_errors_total",
		"HTTP errors by endpoint, method and error type", "endpoint", "method", "error_type")
	m.rateLimited = m.counter("rate_limited_total", "Admin requests rejected by the rate limiter")
	m.idempotentReplays = m.counter("idempotent_replays_total", "Admin creates rejected as idempotent replays")

	m.sheetFetches = m.counterVec("sheet_fetches_total", "Spreadsheet CSV fetches by outcome", "outcome")
	m.sheetLatency = m.histogram("sheet_fetch_latency_milliseconds", "Spreadsheet CSV fetch latency")
	m.sheetRows = m.gauge("sheet_rows", "Rows parsed from the last spreadsheet fetch")
	m.mergeRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_records",
		Help:      "Participants in the last merged view by provenance",
	}, []string{"provenance"})
	m.mergeCollisions = m.counter("merge_collisions_total", "Identity collisions folded by the record merger")
	m.sourceDegraded = m.counterVec("source_degraded_total",
		"Participant source loads that failed and were treated as empty", "source")
	m.uploads = m.counterVec("uploads_total", "Image uploads by outcome", "outcome")
	m.pointsComputed = m.counter("points_computed_total", "Placement point computations")
	m.recalcRecords = m.counterVec("recalc_records_total",
		"Placements visited by recalculation passes by result", "result")
	m.recalcLatency = m.histogram("recalc_latency_milliseconds", "Duration of a full recalculation pass")
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Document store operation latency",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "op"})
	m.storeErrors = m.counterVec("store_errors_total", "Document store operation errors", "backend", "op")
	m.storeSubscribers = m.gauge("store_subscribers", "Active document store subscriptions")

	m.queueSize = m.gauge("queue_size", "Current size of the change notification queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the change notification queue")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Change notifications enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Change notifications dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Change notifications dropped on enqueue")
	m.workerCount = m.gauge("worker_count", "Current number of recompute workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time spent recomputing standings for one notification")
	m.workerErrors = m.counter("worker_errors_total", "Recompute failures")
	m.snapshotRebuilds = m.counter("snapshot_rebuilds_total", "Standings snapshots published")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix time of the last standings snapshot")
	m.snapshotIndividuals = m.gauge("snapshot_individuals", "Individuals in the last standings snapshot")
	m.wsClients = m.gauge("ws_clients", "Connected live standings clients")
	m.wsBroadcasts = m.counter("ws_broadcasts_total", "Standings snapshots pushed to live clients")
}

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
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// RecordIdempotentReplay increments the idempotent replay counter.
func RecordIdempotentReplay() {
	globalManager.idempotentReplays.Inc()
}

// RecordSheetFetch records one spreadsheet fetch.
func RecordSheetFetch(outcome string, latency time.Duration, rows int) error {
	switch outcome {
	case OutcomeOK:
		globalManager.sheetRows.Set(float64(rows))
	case OutcomeError:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.sheetFetches.WithLabelValues(outcome).Inc()
	globalManager.sheetLatency.Observe(float64(latency.Microseconds()) / 1000)
	return nil
}

// RecordMerge publishes the per-provenance counts of the last merged view.
func RecordMerge(live, imported, merged, collisions int) {
	globalManager.mergeRecords.WithLabelValues("live").Set(float64(live))
	globalManager.mergeRecords.WithLabelValues("imported").Set(float64(imported))
	globalManager.mergeRecords.WithLabelValues("merged").Set(float64(merged))
	globalManager.mergeCollisions.Add(float64(collisions))
}

// RecordSourceDegraded counts a participant source load treated as empty.
func RecordSourceDegraded(source string) {
	globalManager.sourceDegraded.WithLabelValues(source).Inc()
}

// RecordUpload counts an image upload.
func RecordUpload(outcome string) error {
	if outcome != OutcomeOK && outcome != OutcomeError {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	globalManager.uploads.WithLabelValues(outcome).Inc()
	return nil
}

// RecordPointsComputed increments the point computation counter.
func RecordPointsComputed() {
	globalManager.pointsComputed.Inc()
}

// RecordRecalculation records the result of a recalculation pass.
func RecordRecalculation(updated, unchanged, failed int, took time.Duration) {
	globalManager.recalcRecords.WithLabelValues(OutcomeUpdated).Add(float64(updated))
	globalManager.recalcRecords.WithLabelValues(OutcomeUnchanged).Add(float64(unchanged))
	globalManager.recalcRecords.WithLabelValues(OutcomeFailed).Add(float64(failed))
	globalManager.recalcLatency.Observe(float64(took.Microseconds()) / 1000)
}

// RecordStoreOp records a document store operation.
func RecordStoreOp(backend, op string, took time.Duration, err error) {
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(float64(took.Microseconds()) / 1000)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(backend, op).Inc()
	}
}

// UpdateStoreSubscribers sets the active subscription count.
func UpdateStoreSubscribers(count int) {
	globalManager.storeSubscribers.Set(float64(count))
}

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
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordSnapshot records a published standings snapshot.
func RecordSnapshot(at time.Time, individuals int) {
	globalManager.snapshotRebuilds.Inc()
	globalManager.snapshotLastUnix.Set(float64(at.Unix()))
	globalManager.snapshotIndividuals.Set(float64(individuals))
}

// UpdateWSClients sets the live client count.
func UpdateWSClients(count int) {
	globalManager.wsClients.Set(float64(count))
}

// RecordWSBroadcast increments the broadcast counter.
func RecordWSBroadcast() {
	globalManager.wsBroadcasts.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
