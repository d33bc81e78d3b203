package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	// Graph API metrics
	GraphRequests *prometheus.CounterVec
	GraphLatency  *prometheus.HistogramVec

	// Fetch-layer cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Dashboard metrics
	DashboardLoads  *prometheus.CounterVec
	ResourceErrors  *prometheus.CounterVec
	SalesRowsLoaded prometheus.Gauge

	// Mutation metrics
	BudgetUpdates *prometheus.CounterVec
	StatusUpdates *prometheus.CounterVec

	// Auth metrics
	LoginAttempts  *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		GraphRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_requests_total",
				Help:      "Total Graph API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		GraphLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_latency_seconds",
				Help:      "Graph API request latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Fetch-layer cache hits by resource",
			},
			[]string{"resource"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Fetch-layer cache misses by resource",
			},
			[]string{"resource"},
		),
		DashboardLoads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_loads_total",
				Help:      "Dashboard loads by scope and period",
			},
			[]string{"scope", "period"},
		),
		ResourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resource_errors_total",
				Help:      "Per-resource fetch failures inside the dashboard fan-out",
			},
			[]string{"resource"},
		),
		SalesRowsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sales_rows_loaded",
				Help:      "Number of sales rows in the last successful fetch",
			},
		),
		BudgetUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_updates_total",
				Help:      "Budget mutations by ownership mode and result",
			},
			[]string{"mode", "result"},
		),
		StatusUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_updates_total",
				Help:      "Campaign status mutations by result",
			},
			[]string{"result"},
		),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Dashboard login attempts by result",
			},
			[]string{"result"},
		),
		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Approximate number of live dashboard sessions",
			},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordGraphRequest records one Graph API call.
func (m *Metrics) RecordGraphRequest(endpoint, status string, latency time.Duration) {
	m.GraphRequests.WithLabelValues(endpoint, status).Inc()
	m.GraphLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordCacheHit records a fetch-layer cache hit.
func (m *Metrics) RecordCacheHit(resource string) {
	m.CacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a fetch-layer cache miss.
func (m *Metrics) RecordCacheMiss(resource string) {
	m.CacheMisses.WithLabelValues(resource).Inc()
}

// RecordDashboardLoad records one dashboard aggregation.
func (m *Metrics) RecordDashboardLoad(scope, period string) {
	m.DashboardLoads.WithLabelValues(scope, period).Inc()
}

// RecordResourceError records a per-resource fetch failure.
func (m *Metrics) RecordResourceError(resource string) {
	m.ResourceErrors.WithLabelValues(resource).Inc()
}

// RecordBudgetUpdate records a budget mutation.
func (m *Metrics) RecordBudgetUpdate(mode string, ok bool) {
	m.BudgetUpdates.WithLabelValues(mode, resultLabel(ok)).Inc()
}

// RecordStatusUpdate records a status mutation.
func (m *Metrics) RecordStatusUpdate(ok bool) {
	m.StatusUpdates.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(ok bool) {
	m.LoginAttempts.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
