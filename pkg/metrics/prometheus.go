// Package metrics provides Prometheus metrics for the skillmatch service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Matching
	matchRequests     *prometheus.CounterVec
	matchLatency      prometheus.Histogram
	matchResults      prometheus.Histogram
	candidatesScored  prometheus.Counter
	candidateLatency  prometheus.Histogram
	fallbackTierUsed  *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
	rateLimitRejected prometheus.Counter

	// Notifications
	notificationsQueued  prometheus.Counter
	notificationsDropped *prometheus.CounterVec
	notificationsSent    prometheus.Counter
	notificationsFailed  *prometheus.CounterVec
	notificationLatency  prometheus.Histogram

	// Queue and workers
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	workerCount      prometheus.Gauge

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

// Configure replaces the global manager with one built from opts on a fresh
// registry, which GetRegistry then returns. Call it before serving /metrics
// or recording anything.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithPrometheusRegistry(registry))
	globalManager = NewManager(all...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillmatch",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	msBuckets := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

	m.matchRequests = auto.NewCounterVec(m.counterOpts("match_requests_total",
		"Match computations by outcome"), []string{"outcome"})
	m.matchLatency = auto.NewHistogram(m.histogramOpts("match_latency_milliseconds",
		"End-to-end match computation latency in milliseconds", msBuckets))
	m.matchResults = auto.NewHistogram(m.histogramOpts("match_results",
		"Number of candidates returned per match request", []float64{0, 1, 3, 5, 10, 20, 50}))
	m.candidatesScored = auto.NewCounter(m.counterOpts("candidates_scored_total",
		"Total candidates scored"))
	m.candidateLatency = auto.NewHistogram(m.histogramOpts("candidate_scoring_latency_milliseconds",
		"Per-candidate fetch and score latency in milliseconds", msBuckets))
	m.fallbackTierUsed = auto.NewCounterVec(m.counterOpts("ranking_tier_total",
		"Ranking tier that produced the result set"), []string{"policy", "tier"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Store failures by operation"), []string{"operation"})
	m.rateLimitRejected = auto.NewCounter(m.counterOpts("rate_limit_rejected_total",
		"Match requests rejected by the rate limiter"))

	m.notificationsQueued = auto.NewCounter(m.counterOpts("notifications_queued_total",
		"Notification jobs accepted by the queue"))
	m.notificationsDropped = auto.NewCounterVec(m.counterOpts("notifications_dropped_total",
		"Notification jobs dropped before delivery"), []string{"reason"})
	m.notificationsSent = auto.NewCounter(m.counterOpts("notifications_sent_total",
		"Notifications persisted"))
	m.notificationsFailed = auto.NewCounterVec(m.counterOpts("notifications_failed_total",
		"Notification side effects that failed"), []string{"stage"})
	m.notificationLatency = auto.NewHistogram(m.histogramOpts("notification_latency_milliseconds",
		"Notification job processing latency in milliseconds", msBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("notification_queue_size",
		"Current number of queued notification jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("notification_queue_capacity",
		"Notification queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("notification_queue_utilization",
		"Notification queue utilization (0.0 to 1.0)"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("notification_workers",
		"Number of notification workers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", msBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP error responses by endpoint and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", m.histogramBuckets))
}

func on() bool { return globalManager != nil && globalManager.enabled }

// RecordMatchRequest counts a match computation by outcome (ok, not_found, cancelled, store_unavailable, error).
func RecordMatchRequest(outcome string) {
	if on() {
		globalManager.matchRequests.WithLabelValues(outcome).Inc()
	}
}

// RecordMatchLatency observes the end-to-end latency of a match computation.
func RecordMatchLatency(latencyMs float64) {
	if on() {
		globalManager.matchLatency.Observe(latencyMs)
	}
}

// RecordMatchResults observes how many candidates a request returned.
func RecordMatchResults(n int) {
	if on() {
		globalManager.matchResults.Observe(float64(n))
	}
}

// RecordCandidateScored counts one scored candidate and its latency.
func RecordCandidateScored(latencyMs float64) {
	if on() {
		globalManager.candidatesScored.Inc()
		globalManager.candidateLatency.Observe(latencyMs)
	}
}

// RecordRankingTier counts which tier of a ranking policy produced the result.
func RecordRankingTier(policy, tier string) {
	if on() {
		globalManager.fallbackTierUsed.WithLabelValues(policy, tier).Inc()
	}
}

// RecordStoreError counts a store failure for the named operation.
func RecordStoreError(operation string) {
	if on() {
		globalManager.storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordRateLimited counts a rejected match request.
func RecordRateLimited() {
	if on() {
		globalManager.rateLimitRejected.Inc()
	}
}

// RecordNotificationQueued counts an accepted notification job.
func RecordNotificationQueued() {
	if on() {
		globalManager.notificationsQueued.Inc()
	}
}

// RecordNotificationDropped counts a job dropped before delivery (queue_full, duplicate, closed).
func RecordNotificationDropped(reason string) {
	if on() {
		globalManager.notificationsDropped.WithLabelValues(reason).Inc()
	}
}

// RecordNotificationSent counts a persisted notification and its processing latency.
func RecordNotificationSent(latencyMs float64) {
	if on() {
		globalManager.notificationsSent.Inc()
		globalManager.notificationLatency.Observe(latencyMs)
	}
}

// RecordNotificationFailed counts a failed side effect by stage (render, store, publish).
func RecordNotificationFailed(stage string) {
	if on() {
		globalManager.notificationsFailed.WithLabelValues(stage).Inc()
	}
}

// UpdateQueueSize sets the current notification queue depth.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the notification queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if on() {
		globalManager.queueUtilization.Set(utilization)
	}
}

// UpdateWorkerCount sets the number of notification workers.
func UpdateWorkerCount(count int) {
	if on() {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if on() {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if on() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often gauge updaters should run.
func RefreshInterval() time.Duration {
	if globalManager == nil {
		return defaultRefreshInterval
	}
	return globalManager.refreshInterval
}
