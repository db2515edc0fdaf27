// Package leaderboard builds the ranked, filterable researcher tables.
//
// All three metric rankings are fetched together; the filter pipeline then
// runs in a fixed order on the active one: affiliation, career stage, sort.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atip/dashboard/internal/display"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

// DefaultLimit is the number of entries fetched per metric.
const DefaultLimit = 100

// ErrorMessage is shown when any ranking fails to load.
const ErrorMessage = "Error loading leaderboards"

// trophyRows is the number of leading rows marked with a trophy.
const trophyRows = 3

// RankingFetcher fetches the ranking of one metric.
type RankingFetcher interface {
	Ranking(ctx context.Context, metric domain.Metric, limit int) ([]domain.RankingEntry, error)
}

// Rankings holds the fetched ranking of every metric.
type Rankings map[domain.Metric][]domain.RankingEntry

// Row is a rendered leaderboard row.
type Row struct {
	display.RankedAuthor
	Trophy bool `json:"trophy"`
}

// Tab is a metric tab.
type Tab struct {
	Metric      domain.Metric `json:"metric"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Active      bool          `json:"active"`
}

// View is the complete leaderboard page model.
type View struct {
	Filter             Filter   `json:"filter"`
	MetricLabel        string   `json:"metric_label"`
	Tabs               []Tab    `json:"tabs"`
	Rows               []Row    `json:"rows"`
	ToggleOrderURL     string   `json:"toggle_order_url"`
	AffiliationOptions []Option `json:"-"`
	CareerOptions      []Option `json:"-"`
	OrderOptions       []Option `json:"-"`
}

// Service loads rankings and builds leaderboard views.
type Service struct {
	fetcher RankingFetcher
	limit   int
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service. A non-positive limit uses DefaultLimit.
func NewService(fetcher RankingFetcher, limit int, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		fetcher: fetcher,
		limit:   limit,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
		metrics: metrics,
	}
}

// Load fetches every metric's ranking concurrently. The first failure
// cancels the rest and is returned; there is no partial result.
func (s *Service) Load(ctx context.Context) (Rankings, error) {
	return FetchRankings(ctx, s.fetcher, domain.AllMetrics, s.limit)
}

// FetchRankings fetches the rankings of metrics concurrently, failing fast.
func FetchRankings(ctx context.Context, fetcher RankingFetcher, metrics []domain.Metric, limit int) (Rankings, error) {
	results := make([][]domain.RankingEntry, len(metrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range metrics {
		g.Go(func() error {
			entries, err := fetcher.Ranking(gctx, m, limit)
			if err != nil {
				return fmt.Errorf("fetching %s ranking: %w", m, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(Rankings, len(metrics))
	for i, m := range metrics {
		out[m] = results[i]
	}
	return out, nil
}

// View loads the rankings and renders the view for f.
func (s *Service) View(ctx context.Context, f Filter) (View, error) {
	start := time.Now()
	rankings, err := s.Load(ctx)
	if err != nil {
		s.metrics.RecordPageError("leaderboards")
		s.logger.Error().Err(err).Str("metric", string(f.Metric)).Msg("failed to load leaderboards")
		return View{}, err
	}
	s.metrics.RecordPageRender("leaderboards", time.Since(start).Seconds())
	return BuildView(rankings, f), nil
}

// BuildView renders the active metric's ranking under f.
func BuildView(rankings Rankings, f Filter) View {
	v := View{
		Filter:             f,
		MetricLabel:        f.Metric.Label(),
		Rows:               Apply(rankings[f.Metric], f),
		ToggleOrderURL:     f.Toggled().URL(),
		AffiliationOptions: AffiliationOptions,
		CareerOptions:      CareerOptions,
		OrderOptions:       OrderOptions,
	}
	for _, m := range domain.AllMetrics {
		v.Tabs = append(v.Tabs, Tab{
			Metric:      m,
			Label:       m.Label(),
			Description: m.Description(),
			URL:         f.WithMetric(m).URL(),
			Active:      m == f.Metric,
		})
	}
	return v
}

// scored pairs an entry with its metric score.
type scored struct {
	entry    domain.RankingEntry
	score    float64
	hasScore bool
}

// Apply runs the filter pipeline on entries and numbers the surviving rows
// from 1 in display order.
func Apply(entries []domain.RankingEntry, f Filter) []Row {
	kept := make([]scored, 0, len(entries))
	for _, e := range entries {
		author := display.EntryAuthor(e)
		if !matchesAffiliation(author, f.Affiliation) || !matchesCareer(author, f.Career) {
			continue
		}
		sc, ok := display.EntryScore(e, f.Metric)
		kept = append(kept, scored{entry: e, score: sc, hasScore: ok})
	}

	sortScored(kept, f.Order)

	rows := make([]Row, len(kept))
	for i, k := range kept {
		rows[i] = Row{
			RankedAuthor: display.NewRankedAuthor(k.entry, f.Metric, i+1),
			Trophy:       i < trophyRows,
		}
	}
	return rows
}

// sortScored stable-sorts by score in order. Entries without a score sort
// last in either direction.
func sortScored(items []scored, order string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.hasScore != b.hasScore {
			return a.hasScore
		}
		if !a.hasScore {
			return false
		}
		if order == OrderAsc {
			return a.score < b.score
		}
		return a.score > b.score
	})
}

func matchesAffiliation(author domain.Record, token string) bool {
	if token == "" || token == AffiliationAll {
		return true
	}
	aff := display.Optional(author, display.AffiliationKeys...)
	return strings.Contains(strings.ToLower(aff), strings.ToLower(token))
}

func matchesCareer(author domain.Record, stage string) bool {
	if stage == "" || stage == CareerAll {
		return true
	}
	years, ok := display.CareerYears(author)
	if !ok {
		return false
	}
	return CareerStage(years) == stage
}
