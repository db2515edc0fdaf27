// Package profile aggregates an author's detail, publications and co-authors
// into the researcher profile page.
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atip/dashboard/internal/display"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
	"github.com/atip/dashboard/internal/viz"
)

// Page-level messages.
const (
	ErrorMessage    = "Error loading profile"
	NotFoundTitle   = "Profile Not Found"
	NotFoundMessage = "The researcher you are looking for does not exist."
)

// Fetcher is the subset of the ATIP API the profile needs.
type Fetcher interface {
	Author(ctx context.Context, id string) (domain.AuthorRecord, error)
	AuthorPapers(ctx context.Context, id string) ([]domain.PaperRecord, error)
	AuthorCoauthors(ctx context.Context, id string) ([]domain.CoauthorEdge, error)
}

// Data is the raw result of a profile fetch.
type Data struct {
	Author    domain.AuthorRecord
	Papers    []domain.PaperRecord
	Coauthors []domain.CoauthorEdge
}

// Publications is the publication list under one sort mode.
type Publications struct {
	Mode   SortMode        `json:"mode"`
	Label  string          `json:"label"`
	Active bool            `json:"active"`
	Papers []display.Paper `json:"papers"`
}

// View is the complete profile page model.
type View struct {
	ID            string             `json:"id"`
	Author        display.Author     `json:"author"`
	Sort          SortMode           `json:"sort"`
	Expanded      string             `json:"expanded,omitempty"`
	Publications  []display.Paper    `json:"publications"`
	Coauthors     []display.Coauthor `json:"coauthors"`
	HasMetricData bool               `json:"has_metric_data"`
	CompareURL    string             `json:"compare_url"`

	// Sorted holds the publications in every sort mode so the page can
	// switch between them without another fetch.
	Sorted    []Publications `json:"-"`
	Expansion Expansion      `json:"-"`
	Radar     viz.Radar      `json:"-"`
	Network   viz.Network    `json:"-"`
}

// IsNotFound reports whether err is a confirmed missing author, as opposed to
// any other failure of the batch.
func IsNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf) && nf.Entity == "author"
}

// Service loads profiles.
type Service struct {
	fetcher Fetcher
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service.
func NewService(fetcher Fetcher, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "profile").Logger(),
		metrics: metrics,
	}
}

// Load fetches the author, papers and co-authors concurrently. The first
// failure cancels the rest and is returned, except that a 404 on papers or
// co-authors waits for the author: a missing author always wins.
func (s *Service) Load(ctx context.Context, id string) (Data, error) {
	var (
		d        Data
		deferred notFoundErrors
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.fetcher.Author(gctx, id)
		if err != nil {
			return fmt.Errorf("fetching author %s: %w", id, err)
		}
		d.Author = a
		return nil
	})
	g.Go(func() error {
		p, err := s.fetcher.AuthorPapers(gctx, id)
		if err != nil {
			return deferred.hold(fmt.Errorf("fetching papers of author %s: %w", id, err))
		}
		d.Papers = p
		return nil
	})
	g.Go(func() error {
		c, err := s.fetcher.AuthorCoauthors(gctx, id)
		if err != nil {
			return deferred.hold(fmt.Errorf("fetching coauthors of author %s: %w", id, err))
		}
		d.Coauthors = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	if err := deferred.first(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// notFoundErrors keeps sub-resource 404s out of the errgroup so they neither
// cancel the author fetch nor race it.
type notFoundErrors struct {
	mu  sync.Mutex
	err error
}

// hold returns err unless it is a not-found, which is recorded instead.
func (n *notFoundErrors) hold(err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err == nil {
		n.err = err
	}
	return nil
}

func (n *notFoundErrors) first() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// View loads the profile of id and renders it with the given sort mode and
// open row.
func (s *Service) View(ctx context.Context, id string, mode SortMode, exp Expansion) (View, error) {
	start := time.Now()
	d, err := s.Load(ctx, id)
	if err != nil {
		s.metrics.RecordPageError("profile")
		ev := s.logger.Error()
		if IsNotFound(err) {
			ev = s.logger.Info()
		}
		ev.Err(err).Str("author_id", id).Msg("failed to load profile")
		return View{}, err
	}
	s.metrics.RecordPageRender("profile", time.Since(start).Seconds())
	return BuildView(id, d, mode, exp), nil
}

// Network loads the co-author network of id with h applied.
func (s *Service) Network(ctx context.Context, id string, h viz.HoverState) (viz.Network, error) {
	var (
		author    domain.AuthorRecord
		coauthors []domain.CoauthorEdge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.fetcher.Author(gctx, id)
		if err != nil {
			return fmt.Errorf("fetching author %s: %w", id, err)
		}
		author = a
		return nil
	})
	var deferred notFoundErrors
	g.Go(func() error {
		c, err := s.fetcher.AuthorCoauthors(gctx, id)
		if err != nil {
			return deferred.hold(fmt.Errorf("fetching coauthors of author %s: %w", id, err))
		}
		coauthors = c
		return nil
	})
	err := g.Wait()
	if err == nil {
		err = deferred.first()
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("author_id", id).Msg("failed to load coauthor network")
		return viz.Network{}, err
	}

	name := display.AuthorName(author.Record)
	return viz.NewNetwork(display.Initials(name), display.NewCoauthors(coauthors)).WithHover(h), nil
}

// BuildView renders fetched profile data.
func BuildView(id string, d Data, mode SortMode, exp Expansion) View {
	mode = ParseSortMode(string(mode))
	author := display.NewAuthor(d.Author.Record)
	if author.ID == "" {
		author.ID = id
	}

	papers := make([]display.Paper, len(d.Papers))
	for i, p := range d.Papers {
		papers[i] = display.NewPaper(p.Record, i)
	}
	coauthors := display.NewCoauthors(d.Coauthors)

	v := View{
		ID:            id,
		Author:        author,
		Sort:          mode,
		Expanded:      exp.Key(),
		Expansion:     exp,
		Coauthors:     coauthors,
		HasMetricData: display.HasData(author.Metrics),
		CompareURL:    CompareURL(id),
		Radar:         viz.NewRadar(RadarAxes(author.Metrics)),
		Network:       viz.NewNetwork(author.Initials, coauthors),
	}
	for _, m := range SortModes {
		sorted := SortPapers(papers, m)
		v.Sorted = append(v.Sorted, Publications{
			Mode:   m,
			Label:  m.Label(),
			Active: m == mode,
			Papers: sorted,
		})
		if m == mode {
			v.Publications = sorted
		}
	}
	return v
}

// RadarAxes picks the radar metrics out of the metric tiles. Missing values
// plot as zero.
func RadarAxes(tiles []display.MetricTile) []viz.Axis {
	byKey := make(map[string]display.MetricTile, len(tiles))
	for _, t := range tiles {
		byKey[t.Key] = t
	}
	axes := make([]viz.Axis, 0, len(display.RadarKeys))
	for _, k := range display.RadarKeys {
		t, ok := byKey[k]
		if !ok {
			continue
		}
		a := viz.Axis{Label: t.Label}
		if t.HasValue {
			a.Value = t.Numeric
		}
		axes = append(axes, a)
	}
	return axes
}

// CompareURL is the comparison link of an author.
func CompareURL(id string) string {
	return "/compare?researchers=" + url.QueryEscape(id)
}
