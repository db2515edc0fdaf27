package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the dashboard. Metrics are
// organized by subsystem: upstream API calls, page rendering and search
// sessions. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// UpstreamRequestsTotal counts ATIP API requests, labeled by endpoint template.
	UpstreamRequestsTotal *prometheus.CounterVec

	// UpstreamRequestsFailed counts failed ATIP API requests, labeled by endpoint and error type.
	UpstreamRequestsFailed *prometheus.CounterVec

	// UpstreamRequestDuration observes ATIP API request duration in seconds.
	UpstreamRequestDuration *prometheus.HistogramVec

	// PageRenders counts rendered views, labeled by page.
	PageRenders *prometheus.CounterVec

	// PageErrors counts views that ended in the error state, labeled by page.
	PageErrors *prometheus.CounterVec

	// BatchDuration observes how long a page's fetch batch took to settle.
	BatchDuration *prometheus.HistogramVec

	// SuggestionsServed observes the number of suggestions per query.
	SuggestionsServed prometheus.Histogram

	// SuggestStaleDiscarded counts suggestion responses dropped because a newer
	// request had already been applied.
	SuggestStaleDiscarded prometheus.Counter

	// SearchSessionsActive tracks search sessions held in memory.
	SearchSessionsActive prometheus.Gauge

	// DebugChecks counts API debug checks, labeled by outcome.
	DebugChecks *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a new Metrics instance registered with reg.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Upstream
		UpstreamRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to the ATIP API",
		}, []string{"endpoint"}),
		UpstreamRequestsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_failed_total",
			Help:      "Total number of failed requests to the ATIP API",
		}, []string{"endpoint", "error_type"}),
		UpstreamRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of requests to the ATIP API in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		// Pages
		PageRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Total number of rendered views by page",
		}, []string{"page"}),
		PageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_errors_total",
			Help:      "Total number of views rendered in the error state by page",
		}, []string{"page"}),
		BatchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time for a page's fetch batch to settle in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"page"}),

		// Search
		SuggestionsServed: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestions_per_query",
			Help:      "Number of suggestions returned per search query",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		SuggestStaleDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_stale_discarded_total",
			Help:      "Total number of out-of-order suggestion responses discarded",
		}),
		SearchSessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_sessions_active",
			Help:      "Number of search sessions held in memory",
		}),

		// Debug
		DebugChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debug_checks_total",
			Help:      "Total number of API debug checks by outcome",
		}, []string{"outcome"}),
	}
}

// RecordUpstreamRequest records a completed ATIP API request.
func (m *Metrics) RecordUpstreamRequest(endpoint string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordUpstreamFailure records a failed ATIP API request.
func (m *Metrics) RecordUpstreamFailure(endpoint, errorType string) {
	if m == nil {
		return
	}
	m.UpstreamRequestsFailed.WithLabelValues(endpoint, errorType).Inc()
}

// RecordPageRender records a rendered view and how long its batch took.
func (m *Metrics) RecordPageRender(page string, batchSeconds float64) {
	if m == nil {
		return
	}
	m.PageRenders.WithLabelValues(page).Inc()
	m.BatchDuration.WithLabelValues(page).Observe(batchSeconds)
}

// RecordPageError records a view rendered in the error state.
func (m *Metrics) RecordPageError(page string) {
	if m == nil {
		return
	}
	m.PageErrors.WithLabelValues(page).Inc()
}

// RecordSuggestions records the size of a suggestion list.
func (m *Metrics) RecordSuggestions(count int) {
	if m == nil {
		return
	}
	m.SuggestionsServed.Observe(float64(count))
}

// RecordStaleSuggestion records a discarded out-of-order response.
func (m *Metrics) RecordStaleSuggestion() {
	if m == nil {
		return
	}
	m.SuggestStaleDiscarded.Inc()
}

// SetSearchSessions sets the number of live search sessions.
func (m *Metrics) SetSearchSessions(n int) {
	if m == nil {
		return
	}
	m.SearchSessionsActive.Set(float64(n))
}

// RecordDebugCheck records the outcome ("ok" or "error") of an API debug check.
func (m *Metrics) RecordDebugCheck(outcome string) {
	if m == nil {
		return
	}
	m.DebugChecks.WithLabelValues(outcome).Inc()
}
