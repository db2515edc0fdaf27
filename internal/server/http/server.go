// Package httpserver serves the ATIP dashboard: server-rendered pages, the
// HTML fragments behind the interactive widgets, and a JSON mirror of every
// page model.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/atip/dashboard/internal/apidebug"
	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/home"
	"github.com/atip/dashboard/internal/leaderboard"
	"github.com/atip/dashboard/internal/observability"
	"github.com/atip/dashboard/internal/profile"
	"github.com/atip/dashboard/internal/suggest"
	"github.com/atip/dashboard/internal/viz"
)

// readinessTimeout bounds the upstream probe of /readyz.
const readinessTimeout = 5 * time.Second

// HomeService renders the home page model.
type HomeService interface {
	View(ctx context.Context) (home.View, error)
}

// LeaderboardService renders leaderboard views.
type LeaderboardService interface {
	View(ctx context.Context, f leaderboard.Filter) (leaderboard.View, error)
}

// ProfileService renders researcher profiles.
type ProfileService interface {
	View(ctx context.Context, id string, mode profile.SortMode, exp profile.Expansion) (profile.View, error)
	Network(ctx context.Context, id string, h viz.HoverState) (viz.Network, error)
}

// Suggester serves search suggestions.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]suggest.Suggestion, error)
	Input(ctx context.Context, session *suggest.Session, query string) suggest.View
}

// DebugRunner runs the API endpoint checks.
type DebugRunner interface {
	Run(ctx context.Context) apidebug.Report
}

// UpstreamProber checks that the ATIP API answers.
type UpstreamProber interface {
	StatsOverview(ctx context.Context) (domain.StatsOverview, error)
}

// Deps are the services behind the HTTP surface.
type Deps struct {
	Home         HomeService
	Leaderboards LeaderboardService
	Profiles     ProfileService
	Suggester    Suggester
	Sessions     *suggest.Store
	Debug        DebugRunner
	Upstream     UpstreamProber
	Metrics      *observability.Metrics
}

// Server is the dashboard HTTP server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	home         HomeService
	leaderboards LeaderboardService
	profiles     ProfileService
	suggester    Suggester
	sessions     *suggest.Store
	debug        DebugRunner
	upstream     UpstreamProber
	metrics      *observability.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(cfg Config, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		home:         deps.Home,
		leaderboards: deps.Leaderboards,
		profiles:     deps.Profiles,
		suggester:    deps.Suggester,
		sessions:     deps.Sessions,
		debug:        deps.Debug,
		upstream:     deps.Upstream,
		metrics:      deps.Metrics,
		logger:       logger.With().Str("component", "http-server").Logger(),
		now:          time.Now,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(requestLogger(s.logger))

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Handle("/static/*", http.FileServerFS(staticFS))

	// Pages
	r.Get("/", s.homePage)
	r.Get("/leaderboards", s.leaderboardsPage)
	r.Get("/profile/{id}", s.profilePage)
	r.Get("/compare", s.placeholderPage("Compare", "Compare Feature Coming Soon"))
	r.Get("/methodology", s.placeholderPage("Methodology", "Methodology Page Coming Soon"))
	r.Get("/affiliations", s.placeholderPage("Affiliations", "Affiliations Page Coming Soon"))
	r.Get("/affiliations/*", s.placeholderPage("Affiliations", "Affiliations Page Coming Soon"))
	r.Get("/api-debug", s.apiDebugPage)
	r.Get("/api-debug/export", s.apiDebugExport)

	// JSON mirror of the page models
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)
		r.Get("/home", s.getHome)
		r.Get("/leaderboards", s.getLeaderboards)
		r.Get("/profile/{id}", s.getProfile)
		r.Get("/suggest", s.getSuggestions)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "resource not found")
		})
	})

	// Widget fragments
	r.Route("/ui", func(r chi.Router) {
		r.Post("/search/input", s.searchInput)
		r.Post("/search/key", s.searchKey)
		r.Post("/search/select", s.searchSelect)
		r.Post("/search/dismiss", s.searchDismiss)
		r.Post("/search/mount", s.searchMount)
		r.Post("/search/unmount", s.searchUnmount)
		r.Get("/profile/{id}/network", s.profileNetwork)
		r.Post("/theme/toggle", s.toggleTheme)
	})

	r.NotFound(s.notFoundPage)

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports ready when the ATIP API answers /stats/overview.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if _, err := s.upstream.StatsOverview(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("readiness probe failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"upstream": "unreachable",
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"upstream": "reachable",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
