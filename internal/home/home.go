// Package home builds the landing page: platform statistics, a short preview
// of every metric's ranking and a spotlight on the top ANCI researcher.
package home

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atip/dashboard/internal/display"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/leaderboard"
	"github.com/atip/dashboard/internal/observability"
)

// DefaultPreviewLimit is the number of entries in each ranking preview.
const DefaultPreviewLimit = 5

// ErrorMessage is shown when any part of the home page fails to load.
const ErrorMessage = "Error loading home page data"

// Fetcher is the subset of the ATIP API the home page needs.
type Fetcher interface {
	leaderboard.RankingFetcher
	StatsOverview(ctx context.Context) (domain.StatsOverview, error)
}

// Preview is the top of one metric's ranking.
type Preview struct {
	Metric      domain.Metric          `json:"metric"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	URL         string                 `json:"url"`
	Rows        []display.RankedAuthor `json:"rows"`
}

// View is the home page model.
type View struct {
	Stats     display.Stats         `json:"stats"`
	Previews  []Preview             `json:"previews"`
	Spotlight *display.RankedAuthor `json:"spotlight,omitempty"`
}

// Service loads the home page.
type Service struct {
	fetcher Fetcher
	limit   int
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service. A non-positive limit uses DefaultPreviewLimit.
func NewService(fetcher Fetcher, limit int, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	return &Service{
		fetcher: fetcher,
		limit:   limit,
		logger:  logger.With().Str("component", "home").Logger(),
		metrics: metrics,
	}
}

// View fetches the statistics and every ranking preview concurrently and
// renders the page. Any failure fails the whole page.
func (s *Service) View(ctx context.Context) (View, error) {
	start := time.Now()

	var (
		stats    domain.StatsOverview
		rankings leaderboard.Rankings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.fetcher.StatsOverview(gctx)
		if err != nil {
			return fmt.Errorf("fetching stats overview: %w", err)
		}
		stats = st
		return nil
	})
	g.Go(func() error {
		r, err := leaderboard.FetchRankings(gctx, s.fetcher, domain.AllMetrics, s.limit)
		if err != nil {
			return err
		}
		rankings = r
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.RecordPageError("home")
		s.logger.Error().Err(err).Msg("failed to load home page")
		return View{}, err
	}

	s.metrics.RecordPageRender("home", time.Since(start).Seconds())
	return BuildView(stats, rankings, s.limit), nil
}

// BuildView renders fetched home data. Preview rows keep the API's ranking
// order.
func BuildView(stats domain.StatsOverview, rankings leaderboard.Rankings, limit int) View {
	v := View{Stats: display.NewStats(stats)}
	for _, m := range domain.AllMetrics {
		entries := rankings[m]
		if len(entries) > limit {
			entries = entries[:limit]
		}
		p := Preview{
			Metric:      m,
			Label:       m.Label(),
			Description: m.Description(),
			URL:         leaderboard.DefaultFilter().WithMetric(m).URL(),
			Rows:        make([]display.RankedAuthor, 0, len(entries)),
		}
		for i, e := range entries {
			p.Rows = append(p.Rows, display.NewRankedAuthor(e, m, i+1))
		}
		v.Previews = append(v.Previews, p)

		if m == domain.MetricANCI && len(p.Rows) > 0 {
			top := p.Rows[0]
			v.Spotlight = &top
		}
	}
	return v
}
