// Package metrics provides Prometheus metrics for the talentscore engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the engine exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	categoryLatency     *prometheus.HistogramVec
	generationFallbacks *prometheus.CounterVec
	scoresCalculated    prometheus.Counter
	scoreCacheHits      prometheus.Counter

	// Analysis
	biasAssessments *prometheus.CounterVec
	rankingSize     prometheus.Histogram
	predictions     *prometheus.CounterVec

	// Storage
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	jobsDeduplicated   prometheus.Counter

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentscore",
		subsystem:        "engine",
		histogramBuckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.categoryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "category_scoring_latency_milliseconds",
		Help:      "Latency of a single category scoring call in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"category"})
	m.generationFallbacks = m.counterVec("generation_fallbacks_total",
		"Text generation failures that were replaced by a fallback result", "component")
	m.scoresCalculated = m.counter("scores_calculated_total", "Applications scored with fresh generations")
	m.scoreCacheHits = m.counter("score_cache_hits_total", "Scoring requests served from fresh stored scores")

	m.biasAssessments = m.counterVec("bias_assessments_total", "Bias assessments by risk level", "risk_level")
	m.rankingSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_population_size",
		Help:      "Number of candidates in a ranking request",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
	})
	m.predictions = m.counterVec("predictions_total", "Performance predictions by assessment", "assessment")

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Score store operation latency in milliseconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"operation"})
	m.storeErrors = m.counterVec("store_errors_total", "Score store operation failures", "operation")

	m.queueSize = m.gauge("queue_size", "Current number of queued scoring jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued scoring jobs")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Scoring jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Scoring jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Scoring jobs rejected by the queue")
	m.jobsDeduplicated = m.counter("jobs_deduplicated_total", "Scoring jobs dropped because one was already pending")

	m.workerCount = m.gauge("worker_count", "Current number of running workers")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time a worker spent on one scoring job in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrorRate = m.counter("worker_errors_total", "Scoring jobs that failed")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated by the process")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = m.gauge("system_gc_pause_milliseconds", "Average GC pause in milliseconds")

	m.httpRequests = m.counterVec("http_requests_total", "Ops HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Ops HTTP request duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000, 2500},
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
}

// RecordCategoryLatency records the duration of one category scoring call.
func RecordCategoryLatency(category string, latencyMs float64) {
	globalManager.categoryLatency.WithLabelValues(category).Observe(latencyMs)
}

// RecordGenerationFallback counts a generation failure replaced by a fallback.
func RecordGenerationFallback(component string) {
	globalManager.generationFallbacks.WithLabelValues(component).Inc()
}

// RecordScoresCalculated counts an application scored from fresh generations.
func RecordScoresCalculated() {
	globalManager.scoresCalculated.Inc()
}

// RecordScoreCacheHit counts a scoring request served from stored scores.
func RecordScoreCacheHit() {
	globalManager.scoreCacheHits.Inc()
}

// RecordBiasAssessment counts a bias assessment at the given risk level.
func RecordBiasAssessment(level string) {
	globalManager.biasAssessments.WithLabelValues(level).Inc()
}

// RecordRankingSize observes the population size of a ranking.
func RecordRankingSize(n int) {
	globalManager.rankingSize.Observe(float64(n))
}

// RecordPrediction counts a prediction by assessment.
func RecordPrediction(assessment string) {
	globalManager.predictions.WithLabelValues(assessment).Inc()
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
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

// RecordJobDeduplicated counts a job dropped by the pending-job deduper.
func RecordJobDeduplicated() {
	globalManager.jobsDeduplicated.Inc()
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
	globalManager.workerErrorRate.Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Set(pauseMs)
}

// RecordHTTPRequest records one served ops HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Total sums every sample of the named counter or gauge family in the custom
// registry. name is the fully qualified metric name.
func Total(name string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, err
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				sum += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				sum += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				sum += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		return sum, nil
	}
	return 0, ErrMetricNotFound
}
