// Package apidebug exercises every ATIP API endpoint and reports each
// outcome independently.
package apidebug

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

// Default test identifiers.
const (
	DefaultAuthorID = "143977260"
	DefaultPaperID  = "219965343"
)

// Check outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Getter issues a raw GET against the ATIP API.
type Getter interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error)
}

// Check is one endpoint call.
type Check struct {
	Name     string
	Endpoint string
	Params   map[string]string
}

// Result is the settled outcome of a Check.
type Result struct {
	Name       string          `json:"name"`
	Endpoint   string          `json:"endpoint"`
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// OK reports whether the check succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Pretty returns the response body indented for display.
func (r Result) Pretty() string {
	if len(r.Data) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Data, "", "  "); err != nil {
		return string(r.Data)
	}
	return buf.String()
}

// Report is the result of a full run.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	AuthorID  string    `json:"author_id"`
	PaperID   string    `json:"paper_id"`
	Results   []Result  `json:"results"`
}

// Passed counts successful checks.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Checks lists every endpoint check, in display order, for the given test ids.
func Checks(authorID, paperID string) []Check {
	limit := func(n string) map[string]string { return map[string]string{"limit": n} }
	return []Check{
		{Name: "API Info", Endpoint: "/"},
		{Name: "OpenAPI Schema", Endpoint: "/openapi.json"},
		{Name: "Authors List", Endpoint: "/authors/", Params: limit("2")},
		{Name: "Author Detail", Endpoint: "/authors/" + authorID},
		{Name: "Author Papers", Endpoint: "/authors/" + authorID + "/papers"},
		{Name: "Author Authorships", Endpoint: "/authors/" + authorID + "/authorships"},
		{Name: "Author Coauthors", Endpoint: "/authors/" + authorID + "/coauthors"},
		{Name: "Papers List", Endpoint: "/papers/", Params: limit("2")},
		{Name: "Paper Detail", Endpoint: "/papers/" + paperID},
		{Name: "Paper Authors", Endpoint: "/papers/" + paperID + "/authors"},
		{Name: "Paper Authorships", Endpoint: "/papers/" + paperID + "/authorships"},
		{Name: "Paper Citations", Endpoint: "/papers/" + paperID + "/citations"},
		{Name: "Ranking PQI", Endpoint: "/rankings/pqi", Params: limit("3")},
		{Name: "Ranking ANCI", Endpoint: "/rankings/anci", Params: limit("3")},
		{Name: "Ranking CAGR", Endpoint: "/rankings/cagr", Params: limit("3")},
		{Name: "Stats Overview", Endpoint: "/stats/overview"},
	}
}

// Runner runs the endpoint checks.
type Runner struct {
	getter   Getter
	authorID string
	paperID  string
	logger   zerolog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewRunner creates a Runner. Empty ids fall back to the defaults.
func NewRunner(getter Getter, authorID, paperID string, logger zerolog.Logger, metrics *observability.Metrics) *Runner {
	if authorID == "" {
		authorID = DefaultAuthorID
	}
	if paperID == "" {
		paperID = DefaultPaperID
	}
	return &Runner{
		getter:   getter,
		authorID: authorID,
		paperID:  paperID,
		logger:   logger.With().Str("component", "apidebug").Logger(),
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run executes every check concurrently and waits for all of them. A failed
// check is captured in its Result and never affects the others.
func (r *Runner) Run(ctx context.Context) Report {
	checks := Checks(r.authorID, r.paperID)
	results := make([]Result, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			results[i] = r.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Timestamp: r.now().UTC(),
		AuthorID:  r.authorID,
		PaperID:   r.paperID,
		Results:   results,
	}
	r.logger.Info().
		Int("passed", report.Passed()).
		Int("total", len(results)).
		Msg("api debug run complete")
	return report
}

func (r *Runner) run(ctx context.Context, c Check) Result {
	start := time.Now()
	data, err := r.getter.Get(ctx, c.Endpoint, c.Params)
	res := Result{
		Name:       c.Name,
		Endpoint:   c.Endpoint,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			res.StatusCode = apiErr.StatusCode
		}
		r.metrics.RecordDebugCheck(StatusError)
		r.logger.Warn().Err(err).Str("check", c.Name).Msg("api debug check failed")
		return res
	}
	res.Status = StatusOK
	res.Data = data
	r.metrics.RecordDebugCheck(StatusOK)
	return res
}

// ExportFilename is the download name of a report taken at t.
func ExportFilename(t time.Time) string {
	return "atip-api-debug-" + t.UTC().Format(time.DateOnly) + ".json"
}

// Export encodes the report as indented JSON.
func Export(report Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
