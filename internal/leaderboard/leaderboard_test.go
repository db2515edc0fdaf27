package leaderboard

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atip/dashboard/internal/display"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

// mockFetcher is a hand-written RankingFetcher.
type mockFetcher struct {
	rankingFn func(ctx context.Context, metric domain.Metric, limit int) ([]domain.RankingEntry, error)
}

func (m *mockFetcher) Ranking(ctx context.Context, metric domain.Metric, limit int) ([]domain.RankingEntry, error) {
	return m.rankingFn(ctx, metric, limit)
}

func entry(fields map[string]any) domain.RankingEntry {
	return domain.RankingEntry{Record: domain.RecordFromMap(fields)}
}

func sampleEntries() []domain.RankingEntry {
	return []domain.RankingEntry{
		entry(map[string]any{"author_id": 1, "name": "Sarah Chen", "affiliation": "Stanford University", "score": 95.8, "career_length": 12}),
		entry(map[string]any{"author_id": 2, "name": "Michael Rodriguez", "affiliation": "MIT", "score": 94.2, "career_length": "8 years"}),
		entry(map[string]any{"author_id": 3, "name": "Emily Watson", "affiliation": "UC Berkeley", "score": 92.1, "career_length": 15}),
		entry(map[string]any{"author_id": 4, "name": "James Liu", "affiliation": "Carnegie Mellon", "score": 88.5, "career_length": 3}),
		entry(map[string]any{"author_id": 5, "name": "Anna Kowalski", "affiliation": "Stanford Medicine", "score": 91.3, "career_length": 16}),
		entry(map[string]any{"author_id": 6, "name": "No Score", "affiliation": "Stanford", "career_length": "unknown"}),
	}
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestParseFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f, err := ParseFilter(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, DefaultFilter(), f)
	})

	t.Run("reads every parameter", func(t *testing.T) {
		f, err := ParseFilter(url.Values{
			"metric":      {"PQI"},
			"affiliation": {"MIT"},
			"career":      {"senior"},
			"order":       {"asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.MetricPQI, f.Metric)
		assert.Equal(t, "mit", f.Affiliation)
		assert.Equal(t, CareerSenior, f.Career)
		assert.Equal(t, OrderAsc, f.Order)
	})

	t.Run("unknown metric falls back to anci", func(t *testing.T) {
		f, err := ParseFilter(url.Values{"metric": {"hindex"}})
		require.NoError(t, err)
		assert.Equal(t, domain.MetricANCI, f.Metric)
	})

	t.Run("accel is cagr", func(t *testing.T) {
		f, err := ParseFilter(url.Values{"metric": {"accel"}})
		require.NoError(t, err)
		assert.Equal(t, domain.MetricCAGR, f.Metric)
	})

	t.Run("invalid career is a validation error", func(t *testing.T) {
		_, err := ParseFilter(url.Values{"career": {"retired"}})
		require.Error(t, err)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "career", verr.Field)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("invalid order is a validation error", func(t *testing.T) {
		_, err := ParseFilter(url.Values{"order": {"sideways"}})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestFilter_URL(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, "/leaderboards?affiliation=all&career=all&metric=anci&order=desc", f.URL())
	assert.Equal(t, "/leaderboards?affiliation=all&career=all&metric=pqi&order=asc", f.WithMetric(domain.MetricPQI).Toggled().URL())

	parsed, err := url.Parse(f.Toggled().URL())
	require.NoError(t, err)
	back, err := ParseFilter(parsed.Query())
	require.NoError(t, err)
	assert.Equal(t, f.Toggled(), back)
}

func TestCareerStage(t *testing.T) {
	assert.Equal(t, CareerEarly, CareerStage(4))
	assert.Equal(t, CareerEarly, CareerStage(4.9))
	assert.Equal(t, CareerMid, CareerStage(5))
	assert.Equal(t, CareerMid, CareerStage(15))
	assert.Equal(t, CareerSenior, CareerStage(16))
}

func TestApply(t *testing.T) {
	t.Run("default sorts by score descending with missing last", func(t *testing.T) {
		rows := Apply(sampleEntries(), DefaultFilter())
		assert.Equal(t, []string{"1", "2", "3", "5", "4", "6"}, ids(rows))
		assert.Equal(t, display.NA, rows[5].Score)
	})

	t.Run("ascending keeps missing scores last", func(t *testing.T) {
		f := DefaultFilter()
		f.Order = OrderAsc
		rows := Apply(sampleEntries(), f)
		assert.Equal(t, []string{"4", "5", "3", "2", "1", "6"}, ids(rows))
	})

	t.Run("desc then asc on distinct scores is reversal", func(t *testing.T) {
		scoredOnly := sampleEntries()[:5]
		desc := ids(Apply(scoredOnly, DefaultFilter()))
		f := DefaultFilter()
		f.Order = OrderAsc
		asc := ids(Apply(scoredOnly, f))

		for i := range desc {
			assert.Equal(t, desc[i], asc[len(asc)-1-i])
		}
	})

	t.Run("rank is filtered index plus one", func(t *testing.T) {
		f := DefaultFilter()
		f.Affiliation = "stanford"
		rows := Apply(sampleEntries(), f)

		require.Equal(t, []string{"1", "5", "6"}, ids(rows))
		for i, r := range rows {
			assert.Equal(t, i+1, r.Rank)
		}
	})

	t.Run("trophy on the first three rows", func(t *testing.T) {
		rows := Apply(sampleEntries(), DefaultFilter())
		for i, r := range rows {
			assert.Equal(t, i < 3, r.Trophy, "row %d", i)
		}
	})

	t.Run("career filter excludes unparseable lengths", func(t *testing.T) {
		f := DefaultFilter()
		f.Career = CareerMid
		assert.Equal(t, []string{"1", "2", "3"}, ids(Apply(sampleEntries(), f)))

		f.Career = CareerEarly
		assert.Equal(t, []string{"4"}, ids(Apply(sampleEntries(), f)))

		f.Career = CareerSenior
		assert.Equal(t, []string{"5"}, ids(Apply(sampleEntries(), f)))
	})

	t.Run("affiliation then career", func(t *testing.T) {
		f := DefaultFilter()
		f.Affiliation = "stanford"
		f.Career = CareerSenior
		assert.Equal(t, []string{"5"}, ids(Apply(sampleEntries(), f)))
	})

	t.Run("ties keep fetch order", func(t *testing.T) {
		entries := []domain.RankingEntry{
			entry(map[string]any{"author_id": "a", "score": 50}),
			entry(map[string]any{"author_id": "b", "score": 50}),
			entry(map[string]any{"author_id": "c", "score": 50}),
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids(Apply(entries, DefaultFilter())))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Apply(nil, DefaultFilter()))
	})
}

func TestBuildView(t *testing.T) {
	f := DefaultFilter().WithMetric(domain.MetricCAGR)
	v := BuildView(Rankings{
		domain.MetricANCI: sampleEntries(),
		domain.MetricCAGR: sampleEntries()[:2],
		domain.MetricPQI:  nil,
	}, f)

	assert.Equal(t, "CAGR", v.MetricLabel)
	assert.Len(t, v.Rows, 2)
	require.Len(t, v.Tabs, 3)
	assert.True(t, v.Tabs[1].Active)
	assert.Equal(t, "/leaderboards?affiliation=all&career=all&metric=anci&order=desc", v.Tabs[0].URL)
	assert.Contains(t, v.ToggleOrderURL, "order=asc")
}

func TestService_View(t *testing.T) {
	t.Run("fetches every metric with the limit", func(t *testing.T) {
		var calls int32
		fetcher := &mockFetcher{rankingFn: func(_ context.Context, m domain.Metric, limit int) ([]domain.RankingEntry, error) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, 100, limit)
			return sampleEntries(), nil
		}}
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetricsWith("test", reg)
		svc := NewService(fetcher, 0, zerolog.Nop(), metrics)

		v, err := svc.View(context.Background(), DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Len(t, v.Rows, 6)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PageRenders.WithLabelValues("leaderboards")))
	})

	t.Run("any failure fails the whole view", func(t *testing.T) {
		fetcher := &mockFetcher{rankingFn: func(ctx context.Context, m domain.Metric, _ int) ([]domain.RankingEntry, error) {
			if m == domain.MetricPQI {
				return nil, domain.NewAPIError("/rankings/pqi", 500, "boom", nil)
			}
			return sampleEntries(), nil
		}}
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetricsWith("test", reg)
		svc := NewService(fetcher, 10, zerolog.Nop(), metrics)

		_, err := svc.View(context.Background(), DefaultFilter())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUpstream))
		assert.Contains(t, err.Error(), "pqi")
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PageErrors.WithLabelValues("leaderboards")))
	})
}
