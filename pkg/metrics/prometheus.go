// Package metrics provides Prometheus metrics for the sitescope service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultLatencyBuckets are milliseconds; map updates sit at the low end and
// backend calls at the high end.
var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the sitescope service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	enabled        bool
	constLabels    prometheus.Labels
	metricPrefix   string
	registry       prometheus.Registerer

	// Normalization
	cellsNormalized prometheus.Counter
	cellsDropped    *prometheus.CounterVec

	// Map updates
	mapUpdates       *prometheus.CounterVec
	mapUpdateLatency prometheus.Histogram
	batchSize        prometheus.Gauge
	batchVersion     prometheus.Gauge
	highlightedCells prometheus.Gauge

	// Update queue
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueue   prometheus.Counter
	queueDequeue   prometheus.Counter
	queueRejected  *prometheus.CounterVec
	queueWaitTime  prometheus.Histogram
	loopProcessing prometheus.Histogram

	// Chat backend
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	chatFallbacks   prometheus.Counter
	mockScenarios   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
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
		namespace:      "sitescope",
		subsystem:      "map",
		latencyBuckets: defaultLatencyBuckets,
		enabled:        true,
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	latencyBuckets := m.latencyBuckets

	m.cellsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("cells_normalized_total"),
		Help: "Total number of cells that passed validation",
	})
	m.cellsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("cells_dropped_total"),
		Help: "Total number of raw cells dropped during normalization, by reason",
	}, []string{"reason"})

	m.mapUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("updates_total"),
		Help: "Total number of map updates by source and result",
	}, []string{"source", "result"})
	m.mapUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("update_latency_milliseconds"),
		Help:    "Time spent normalizing and rendering one map update",
		Buckets: latencyBuckets,
	})
	m.batchSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("batch_size"),
		Help: "Number of cells in the displayed batch",
	})
	m.batchVersion = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("batch_version"),
		Help: "Version counter of the displayed batch",
	})
	m.highlightedCells = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("highlighted_cells"),
		Help: "Number of highlighted cells in the displayed batch",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("queue_size"),
		Help: "Current number of pending map updates",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("queue_capacity"),
		Help: "Capacity of the map update queue",
	})
	m.queueEnqueue = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("queue_enqueue_total"),
		Help: "Total number of map updates accepted by the queue",
	})
	m.queueDequeue = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("queue_dequeue_total"),
		Help: "Total number of map updates handed to the update loop",
	})
	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("queue_rejected_total"),
		Help: "Total number of map updates rejected by the queue, by reason",
	}, []string{"reason"})
	m.queueWaitTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("queue_wait_milliseconds"),
		Help:    "Time a map update waited in the queue",
		Buckets: latencyBuckets,
	})
	m.loopProcessing = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("loop_processing_milliseconds"),
		Help:    "Time the update loop spent on one update",
		Buckets: latencyBuckets,
	})

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("backend_requests_total"),
		Help: "Total number of chat backend calls by backend and result",
	}, []string{"backend", "result"})
	m.backendLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("backend_latency_milliseconds"),
		Help:    "Chat backend latency in milliseconds",
		Buckets: latencyBuckets,
	}, []string{"backend"})
	m.chatFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("chat_fallbacks_total"),
		Help: "Total number of chat answers replaced by the fallback message",
	})
	m.mockScenarios = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("mock_scenarios_total"),
		Help: "Total number of generated mock batches by scenario and style",
	}, []string{"scenario", "style"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("errors_by_component_total"),
		Help: "Total number of errors by component and type",
	}, []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("errors_by_type_total"),
		Help: "Total number of errors by type and severity",
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: m.name("errors_by_endpoint_total"),
		Help: "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    m.name("error_latency_milliseconds"),
		Help:    "Latency of requests that ended in an error",
		Buckets: latencyBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: m.constLabels,
		Name: m.name("memory_usage_bytes"),
		Help: "Current heap allocation in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: m.constLabels,
		Name: m.name("goroutine_count"),
		Help: "Current number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: m.constLabels,
		Name:    m.name("gc_pause_milliseconds"),
		Help:    "Average GC pause time in milliseconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// Normalization

func RecordCellNormalized() {
	if globalManager.enabled {
		globalManager.cellsNormalized.Inc()
	}
}

func RecordCellDropped(reason string) {
	if globalManager.enabled {
		globalManager.cellsDropped.WithLabelValues(reason).Inc()
	}
}

// Map updates

func RecordMapUpdate(source, result string) {
	if globalManager.enabled {
		globalManager.mapUpdates.WithLabelValues(source, result).Inc()
	}
}

func RecordMapUpdateLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.mapUpdateLatency.Observe(latencyMs)
	}
}

func UpdateBatchSize(size int) {
	if globalManager.enabled {
		globalManager.batchSize.Set(float64(size))
	}
}

func UpdateBatchVersion(version uint64) {
	if globalManager.enabled {
		globalManager.batchVersion.Set(float64(version))
	}
}

func UpdateHighlightedCells(count int) {
	if globalManager.enabled {
		globalManager.highlightedCells.Set(float64(count))
	}
}

// Update queue

func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueue.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeue.Inc()
	}
}

func RecordQueueRejected(reason string) {
	if globalManager.enabled {
		globalManager.queueRejected.WithLabelValues(reason).Inc()
	}
}

func RecordQueueWaitTime(latencyMs float64) {
	if globalManager.enabled {
		globalManager.queueWaitTime.Observe(latencyMs)
	}
}

func RecordLoopProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.loopProcessing.Observe(latencyMs)
	}
}

// Chat backend

func RecordBackendRequest(backend, result string) {
	if globalManager.enabled {
		globalManager.backendRequests.WithLabelValues(backend, result).Inc()
	}
}

func RecordBackendLatency(backend string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.backendLatency.WithLabelValues(backend).Observe(latencyMs)
	}
}

func RecordChatFallback() {
	if globalManager.enabled {
		globalManager.chatFallbacks.Inc()
	}
}

func RecordMockScenario(scenario, style string) {
	if globalManager.enabled {
		globalManager.mockScenarios.WithLabelValues(scenario, style).Inc()
	}
}

// HTTP

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Errors

func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// System

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry the global manager publishes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
