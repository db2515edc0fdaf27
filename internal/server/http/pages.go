package httpserver

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atip/dashboard/internal/apidebug"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/home"
	"github.com/atip/dashboard/internal/leaderboard"
	"github.com/atip/dashboard/internal/profile"
	"github.com/atip/dashboard/internal/viz"
)

// profileModel is the profile view with its charts rendered.
type profileModel struct {
	profile.View
	RadarSVG   template.HTML
	NetworkSVG template.HTML
}

// homePage handles GET /.
func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	v, err := s.home.View(r.Context())
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, pageHome, "", home.ErrorMessage)
		return
	}
	s.render(w, r, http.StatusOK, pageHome, page{Data: v})
}

// leaderboardsPage handles GET /leaderboards.
func (s *Server) leaderboardsPage(w http.ResponseWriter, r *http.Request) {
	f, err := leaderboard.ParseFilter(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, pageLeaderboards, "Leaderboards", err.Error())
		return
	}
	v, err := s.leaderboards.View(r.Context(), f)
	if err != nil {
		s.renderError(w, r, http.StatusBadGateway, pageLeaderboards, "Leaderboards", leaderboard.ErrorMessage)
		return
	}
	s.render(w, r, http.StatusOK, pageLeaderboards, page{Title: v.MetricLabel + " Leaderboard", Data: v})
}

// profilePage handles GET /profile/{id}. The ?sort= and ?expanded= query
// parameters set the initial publication order and open row.
func (s *Server) profilePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	v, err := s.profiles.View(r.Context(), id, profile.ParseSortMode(q.Get("sort")), profile.Expanded(q.Get("expanded")))
	if err != nil {
		if profile.IsNotFound(err) {
			s.renderError(w, r, http.StatusNotFound, pageProfile, profile.NotFoundTitle, profile.NotFoundTitle)
			return
		}
		s.renderError(w, r, profileErrorStatus(err), pageProfile, "Profile", profile.ErrorMessage)
		return
	}

	p := profileModel{View: v}
	if p.RadarSVG, err = viz.RadarHTML(v.Radar); err != nil {
		s.logger.Error().Err(err).Str("author_id", id).Msg("failed to render radar")
	}
	if p.NetworkSVG, err = viz.NetworkHTML(v.Network); err != nil {
		s.logger.Error().Err(err).Str("author_id", id).Msg("failed to render network")
	}
	s.render(w, r, http.StatusOK, pageProfile, page{Title: v.Author.Name, Data: p})
}

// profileErrorStatus maps a failed profile batch to a status. Only a missing
// author is a 404; every other failure, including a 404 on papers or
// co-authors, is an upstream failure.
func profileErrorStatus(err error) int {
	switch {
	case profile.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// placeholderPage serves a "Coming Soon" page.
func (s *Server) placeholderPage(title, heading string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, pagePlaceholder, page{Title: title, Data: heading})
	}
}

// apiDebugPage handles GET /api-debug.
func (s *Server) apiDebugPage(w http.ResponseWriter, r *http.Request) {
	report := s.debug.Run(r.Context())
	s.render(w, r, http.StatusOK, pageAPIDebug, page{Title: "API Debug", Data: report})
}

// apiDebugExport handles GET /api-debug/export by running the checks and
// offering the report as a download.
func (s *Server) apiDebugExport(w http.ResponseWriter, r *http.Request) {
	report := s.debug.Run(r.Context())
	data, err := apidebug.Export(report)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode api debug report")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+apidebug.ExportFilename(report.Timestamp)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// notFoundPage is the catch-all 404.
func (s *Server) notFoundPage(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug().Str("path", r.URL.Path).Msg("route not found")
	s.render(w, r, http.StatusNotFound, pageNotFound, page{Title: "Not Found"})
}
