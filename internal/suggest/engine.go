// Package suggest implements the researcher search bar: fetching author
// suggestions for a query and the keyboard-driven selection state of each
// browser's search session.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atip/dashboard/internal/display"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

// DefaultLimit is the maximum number of suggestions shown.
const DefaultLimit = 5

// ErrorMessage is shown inline when a suggestion fetch fails.
const ErrorMessage = "Error loading suggestions"

// AuthorSearcher finds authors matching a free-text query.
type AuthorSearcher interface {
	SearchAuthors(ctx context.Context, query string, limit int) ([]domain.AuthorRecord, error)
}

// Suggestion is one entry of the suggestion panel.
type Suggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
}

// ProfilePath returns the route of the suggested author's profile.
func (s Suggestion) ProfilePath() string {
	return "/profile/" + s.ID
}

// Engine fetches and filters suggestions.
type Engine struct {
	searcher AuthorSearcher
	limit    int
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewEngine creates an Engine. A non-positive limit uses DefaultLimit.
func NewEngine(searcher AuthorSearcher, limit int, logger zerolog.Logger, metrics *observability.Metrics) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{
		searcher: searcher,
		limit:    limit,
		logger:   logger.With().Str("component", "suggest").Logger(),
		metrics:  metrics,
	}
}

// Suggest returns at most limit authors whose name or affiliation contains
// query, case-insensitively. An empty query yields no suggestions and no
// request. Authors without an identifier are dropped since they cannot be
// navigated to.
func (e *Engine) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	authors, err := e.searcher.SearchAuthors(ctx, q, e.limit)
	if err != nil {
		return nil, fmt.Errorf("searching authors: %w", err)
	}

	needle := strings.ToLower(q)
	out := make([]Suggestion, 0, e.limit)
	for _, a := range authors {
		s := Suggestion{
			ID:          display.Optional(a.Record, display.AuthorIDKeys...),
			Name:        display.AuthorName(a.Record),
			Affiliation: display.Optional(a.Record, display.AffiliationKeys...),
		}
		if s.ID == "" || !matches(s, needle) {
			continue
		}
		out = append(out, s)
		if len(out) == e.limit {
			break
		}
	}

	e.metrics.RecordSuggestions(len(out))
	return out, nil
}

// Input applies a keystroke to session: it tags a fetch with the next
// sequence number, runs it, and applies the result unless a newer one has
// already been shown.
func (e *Engine) Input(ctx context.Context, session *Session, query string) View {
	seq, q := session.Begin(query)
	if q == "" {
		return session.View()
	}

	sid := observability.SessionIDFromContext(ctx)
	if sid == "" {
		sid = session.ID()
	}
	logger := observability.WithSessionContext(e.logger, sid)

	suggestions, err := e.Suggest(ctx, q)
	if err != nil {
		logger.Warn().
			Err(err).
			Uint64("seq", seq).
			Msg("suggestion fetch failed")
	}
	if !session.Apply(seq, suggestions, err) {
		e.metrics.RecordStaleSuggestion()
		logger.Debug().
			Uint64("seq", seq).
			Msg("discarded stale suggestions")
	}
	return session.View()
}

func matches(s Suggestion, needle string) bool {
	return strings.Contains(strings.ToLower(s.Name), needle) ||
		strings.Contains(strings.ToLower(s.Affiliation), needle)
}
