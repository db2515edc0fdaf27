package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/leaderboard"
	"github.com/atip/dashboard/internal/profile"
	"github.com/atip/dashboard/internal/suggest"
)

// maxQueryLength bounds the search query accepted by /api/suggest.
const maxQueryLength = 200

// suggestResponse is the JSON body of /api/suggest.
type suggestResponse struct {
	Query       string               `json:"query"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// getHome handles GET /api/home.
func (s *Server) getHome(w http.ResponseWriter, r *http.Request) {
	v, err := s.home.View(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// getLeaderboards handles GET /api/leaderboards.
func (s *Server) getLeaderboards(w http.ResponseWriter, r *http.Request) {
	f, err := leaderboard.ParseFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	v, err := s.leaderboards.View(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// getProfile handles GET /api/profile/{id}.
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	v, err := s.profiles.View(r.Context(), id, profile.ParseSortMode(q.Get("sort")), profile.Expanded(q.Get("expanded")))
	if err != nil {
		if !profile.IsNotFound(err) && errors.Is(err, domain.ErrNotFound) {
			writeError(w, profileErrorStatus(err), "upstream error")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// getSuggestions handles GET /api/suggest?q=.
func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) > maxQueryLength {
		writeDomainError(w, domain.NewValidationError("q", "query is too long"))
		return
	}
	sugs, err := s.suggester.Suggest(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if sugs == nil {
		sugs = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: sugs})
}

// writeDomainError maps domain errors to appropriate HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "upstream error")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
