package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test uses its own registry so metric names never collide.
func newTestMetrics() *Metrics {
	return NewMetricsWith("test_atip", prometheus.NewRegistry())
}

func TestNewMetricsWith(t *testing.T) {
	m := newTestMetrics()

	assert.NotNil(t, m.UpstreamRequestsTotal)
	assert.NotNil(t, m.UpstreamRequestsFailed)
	assert.NotNil(t, m.UpstreamRequestDuration)
	assert.NotNil(t, m.PageRenders)
	assert.NotNil(t, m.PageErrors)
	assert.NotNil(t, m.BatchDuration)
	assert.NotNil(t, m.SuggestionsServed)
	assert.NotNil(t, m.SuggestStaleDiscarded)
	assert.NotNil(t, m.SearchSessionsActive)
	assert.NotNil(t, m.DebugChecks)
}

func TestRecordUpstreamRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordUpstreamRequest("/authors/{id}", 0.2)
	m.RecordUpstreamRequest("/authors/{id}", 0.4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("/authors/{id}")))
	count, err := getHistogramSampleCount(m.UpstreamRequestDuration.WithLabelValues("/authors/{id}").(prometheus.Histogram))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRecordUpstreamFailure(t *testing.T) {
	m := newTestMetrics()

	m.RecordUpstreamFailure("/rankings/{metric}", "status_500")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsFailed.WithLabelValues("/rankings/{metric}", "status_500")))
}

func TestRecordPageRenderAndError(t *testing.T) {
	m := newTestMetrics()

	m.RecordPageRender("profile", 0.3)
	m.RecordPageError("profile")
	m.RecordPageError("profile")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageRenders.WithLabelValues("profile")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageErrors.WithLabelValues("profile")))
}

func TestSearchMetrics(t *testing.T) {
	m := newTestMetrics()

	m.RecordSuggestions(5)
	m.RecordStaleSuggestion()
	m.SetSearchSessions(3)
	m.RecordDebugCheck("ok")

	count, err := getHistogramSampleCount(m.SuggestionsServed)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuggestStaleDiscarded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SearchSessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DebugChecks.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordUpstreamRequest("/", 1)
		m.RecordUpstreamFailure("/", "transport")
		m.RecordPageRender("home", 1)
		m.RecordPageError("home")
		m.RecordSuggestions(1)
		m.RecordStaleSuggestion()
		m.SetSearchSessions(1)
		m.RecordDebugCheck("error")
	})
}

// getHistogramSampleCount extracts the sample count from a histogram.
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var metric = &dto.Metric{}
	if err := m.Write(metric); err != nil {
		return 0, err
	}

	return metric.Histogram.GetSampleCount(), nil
}
