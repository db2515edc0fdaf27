// Package atipapi provides a client for the read-only ATIP REST API.
package atipapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

const (
	// maxErrorBody bounds how much of a failed response is kept as the message.
	maxErrorBody = 1 << 20
	// maxBody bounds a successful response body.
	maxBody = 10 << 20
)

// listKeys are the envelope fields that may wrap a list response.
var listKeys = []string{"items", "results", "data"}

// Config configures the ATIP API client.
type Config struct {
	// BaseURL is the ATIP API root, e.g. http://18.143.177.82.
	BaseURL string

	// HTTP configures rate limiting, timeouts and retries.
	HTTP HTTPClientConfig
}

// Client issues GET requests against the ATIP API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *HTTPClient
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// New creates a Client. metrics may be nil.
func New(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", cfg.BaseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	return &Client{
		baseURL:    u,
		httpClient: NewHTTPClient(cfg.HTTP),
		logger:     logger.With().Str("component", "atipapi").Logger(),
		metrics:    metrics,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get issues a GET for endpoint with params encoded as the query string and
// returns the raw JSON body. Non-2xx responses yield a *domain.APIError
// carrying the status; a 404 matches domain.ErrNotFound.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	label := endpointLabel(endpoint)
	logger := observability.WithUpstreamContext(c.logger, label)

	reqURL := c.buildURL(endpoint, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure(label, "transport")
		logger.Warn().Err(err).Str("url", reqURL).Msg("ATIP API request failed")
		return nil, domain.NewAPIError(endpoint, 0, err.Error(), err)
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(label, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.RecordUpstreamFailure(label, statusClass(resp.StatusCode))
		logger.Warn().
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("ATIP API returned non-success status")
		return nil, domain.NewAPIError(endpoint, resp.StatusCode, errorMessage(resp.StatusCode, body), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.metrics.RecordUpstreamFailure(label, "read")
		return nil, domain.NewAPIError(endpoint, resp.StatusCode, "reading response body", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		c.metrics.RecordUpstreamFailure(label, "decode")
		return nil, domain.NewAPIError(endpoint, resp.StatusCode, "response is not valid JSON", domain.ErrMalformedResponse)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("ATIP API request completed")

	return json.RawMessage(body), nil
}

// SearchAuthors returns up to limit authors matching query.
func (c *Client) SearchAuthors(ctx context.Context, query string, limit int) ([]domain.AuthorRecord, error) {
	params := limitParams(limit)
	params["search"] = query
	return getList[domain.AuthorRecord](ctx, c, "/authors/", params)
}

// ListAuthors returns up to limit authors.
func (c *Client) ListAuthors(ctx context.Context, limit int) ([]domain.AuthorRecord, error) {
	return getList[domain.AuthorRecord](ctx, c, "/authors/", limitParams(limit))
}

// Author returns a single author. A 404 or an empty body is reported as a
// *domain.NotFoundError.
func (c *Client) Author(ctx context.Context, id string) (domain.AuthorRecord, error) {
	rec, err := c.getOne(ctx, "author", "/authors/", id, "")
	return domain.AuthorRecord{Record: rec}, err
}

// AuthorPapers returns the papers of an author.
func (c *Client) AuthorPapers(ctx context.Context, id string) ([]domain.PaperRecord, error) {
	endpoint, err := entityPath("/authors/", id, "/papers")
	if err != nil {
		return nil, err
	}
	return getList[domain.PaperRecord](ctx, c, endpoint, nil)
}

// AuthorAuthorships returns the authorship records of an author.
func (c *Client) AuthorAuthorships(ctx context.Context, id string) ([]domain.Record, error) {
	endpoint, err := entityPath("/authors/", id, "/authorships")
	if err != nil {
		return nil, err
	}
	return getList[domain.Record](ctx, c, endpoint, nil)
}

// AuthorCoauthors returns the co-author edges of an author.
func (c *Client) AuthorCoauthors(ctx context.Context, id string) ([]domain.CoauthorEdge, error) {
	endpoint, err := entityPath("/authors/", id, "/coauthors")
	if err != nil {
		return nil, err
	}
	return getList[domain.CoauthorEdge](ctx, c, endpoint, nil)
}

// Papers returns up to limit papers.
func (c *Client) Papers(ctx context.Context, limit int) ([]domain.PaperRecord, error) {
	return getList[domain.PaperRecord](ctx, c, "/papers/", limitParams(limit))
}

// Paper returns a single paper.
func (c *Client) Paper(ctx context.Context, id string) (domain.PaperRecord, error) {
	rec, err := c.getOne(ctx, "paper", "/papers/", id, "")
	return domain.PaperRecord{Record: rec}, err
}

// PaperAuthors returns the authors of a paper.
func (c *Client) PaperAuthors(ctx context.Context, id string) ([]domain.AuthorRecord, error) {
	endpoint, err := entityPath("/papers/", id, "/authors")
	if err != nil {
		return nil, err
	}
	return getList[domain.AuthorRecord](ctx, c, endpoint, nil)
}

// PaperAuthorships returns the authorship records of a paper.
func (c *Client) PaperAuthorships(ctx context.Context, id string) ([]domain.Record, error) {
	endpoint, err := entityPath("/papers/", id, "/authorships")
	if err != nil {
		return nil, err
	}
	return getList[domain.Record](ctx, c, endpoint, nil)
}

// PaperCitations returns the papers citing a paper.
func (c *Client) PaperCitations(ctx context.Context, id string) ([]domain.PaperRecord, error) {
	endpoint, err := entityPath("/papers/", id, "/citations")
	if err != nil {
		return nil, err
	}
	return getList[domain.PaperRecord](ctx, c, endpoint, nil)
}

// Ranking returns up to limit ranking entries for metric, in rank order.
func (c *Client) Ranking(ctx context.Context, metric domain.Metric, limit int) ([]domain.RankingEntry, error) {
	m, ok := domain.ParseMetric(string(metric))
	if !ok {
		return nil, domain.NewValidationError("metric", fmt.Sprintf("unsupported metric %q", metric))
	}
	return getList[domain.RankingEntry](ctx, c, "/rankings/"+string(m), limitParams(limit))
}

// StatsOverview returns the aggregate counts object.
func (c *Client) StatsOverview(ctx context.Context) (domain.StatsOverview, error) {
	raw, err := c.Get(ctx, "/stats/overview", nil)
	if err != nil {
		return domain.StatsOverview{}, err
	}
	return domain.StatsOverview{Record: domain.NewRecord(raw)}, nil
}

// Info returns the API root document.
func (c *Client) Info(ctx context.Context) (domain.Record, error) {
	raw, err := c.Get(ctx, "/", nil)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.NewRecord(raw), nil
}

// OpenAPI returns the API's OpenAPI document.
func (c *Client) OpenAPI(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/openapi.json", nil)
}

func (c *Client) getOne(ctx context.Context, entity, prefix, id, suffix string) (domain.Record, error) {
	endpoint, err := entityPath(prefix, id, suffix)
	if err != nil {
		return domain.Record{}, err
	}
	raw, err := c.Get(ctx, endpoint, nil)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return domain.Record{}, fmt.Errorf("%w: %w", domain.NewNotFoundError(entity, id), err)
		}
		return domain.Record{}, err
	}
	rec := domain.NewRecord(raw)
	if rec.IsZero() {
		return domain.Record{}, domain.NewNotFoundError(entity, id)
	}
	return rec, nil
}

func (c *Client) buildURL(endpoint string, params map[string]string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// getList decodes a list response. Bare arrays are accepted as well as
// objects wrapping the array under one of listKeys; null decodes to an empty list.
func getList[T any](ctx context.Context, c *Client, endpoint string, params map[string]string) ([]T, error) {
	raw, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(raw)
	if err != nil {
		return nil, domain.NewAPIError(endpoint, http.StatusOK, err.Error(), domain.ErrMalformedResponse)
	}
	out := make([]T, 0)
	if err := json.Unmarshal(items, &out); err != nil {
		return nil, domain.NewAPIError(endpoint, http.StatusOK, "decoding list: "+err.Error(), domain.ErrMalformedResponse)
	}
	return out, nil
}

func unwrapList(raw json.RawMessage) (json.RawMessage, error) {
	res := gjson.ParseBytes(raw)
	switch {
	case res.IsArray():
		return raw, nil
	case res.Type == gjson.Null:
		return json.RawMessage("[]"), nil
	case res.IsObject():
		for _, key := range listKeys {
			if v := res.Get(key); v.IsArray() {
				return json.RawMessage(v.Raw), nil
			}
		}
		return nil, fmt.Errorf("object response has no list field")
	}
	return nil, fmt.Errorf("expected a list, got %s", res.Type)
}

func entityPath(prefix, id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewValidationError("id", "must not be empty")
	}
	return prefix + url.PathEscape(id) + suffix, nil
}

func limitParams(limit int) map[string]string {
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	return params
}

// endpointLabel collapses identifiers so metric labels stay low-cardinality:
// /authors/42/papers becomes /authors/{id}/papers.
func endpointLabel(endpoint string) string {
	segments := strings.Split(endpoint, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i] == "" {
			continue
		}
		switch segments[i-1] {
		case "authors", "papers":
			segments[i] = "{id}"
		case "rankings":
			segments[i] = "{metric}"
		}
	}
	return strings.Join(segments, "/")
}

func statusClass(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}

func errorMessage(status int, body []byte) string {
	if detail := gjson.GetBytes(body, "detail"); detail.Type == gjson.String && detail.Str != "" {
		return detail.Str
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 {
		return http.StatusText(status)
	}
	return msg
}
