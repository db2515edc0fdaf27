package httpserver

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atip/dashboard/internal/observability"
	"github.com/atip/dashboard/internal/suggest"
	"github.com/atip/dashboard/internal/viz"
)

// Cookie names.
const (
	sessionCookie = "atip_search"
	themeCookie   = "atip_theme"
)

// Themes.
const (
	themeLight = "light"
	themeDark  = "dark"
)

const themeMaxAge = 365 * 24 * time.Hour

// searchSession returns the caller's search session, creating it and setting
// the cookie when the browser has none.
func (s *Server) searchSession(w http.ResponseWriter, r *http.Request) *suggest.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess, created := s.sessions.Session(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// searchView is the search bar state rendered into a full page.
func (s *Server) searchView(r *http.Request) suggest.View {
	if s.sessions != nil {
		if c, err := r.Cookie(sessionCookie); err == nil {
			if sess, ok := s.sessions.Lookup(c.Value); ok {
				return sess.View()
			}
		}
	}
	return suggest.NewSession("").View()
}

// renderPanel writes the suggestion panel. A committed suggestion navigates
// the browser through the HX-Redirect header.
func (s *Server) renderPanel(w http.ResponseWriter, v suggest.View) {
	if v.Navigate != "" {
		w.Header().Set("HX-Redirect", v.Navigate)
	}
	s.renderFragment(w, "search_panel", v)
}

// searchInput handles POST /ui/search/input.
func (s *Server) searchInput(w http.ResponseWriter, r *http.Request) {
	sess := s.searchSession(w, r)
	ctx := observability.WithSessionID(r.Context(), sess.ID())
	s.renderPanel(w, s.suggester.Input(ctx, sess, r.FormValue("q")))
}

// searchKey handles POST /ui/search/key.
func (s *Server) searchKey(w http.ResponseWriter, r *http.Request) {
	sess := s.searchSession(w, r)
	sess.Key(r.FormValue("key"))
	s.renderPanel(w, sess.View())
}

// searchSelect handles POST /ui/search/select.
func (s *Server) searchSelect(w http.ResponseWriter, r *http.Request) {
	sess := s.searchSession(w, r)
	if !sess.Select(r.FormValue("id")) {
		logger := observability.WithSessionContext(s.logger, sess.ID())
		logger.Debug().Msg("selected suggestion is no longer shown")
	}
	s.renderPanel(w, sess.View())
}

// searchDismiss handles POST /ui/search/dismiss, sent on every pointer press.
func (s *Server) searchDismiss(w http.ResponseWriter, r *http.Request) {
	sess := s.searchSession(w, r)
	sess.PointerDown(r.FormValue("inside") == "true")
	s.renderPanel(w, sess.View())
}

// searchMount handles POST /ui/search/mount.
func (s *Server) searchMount(w http.ResponseWriter, r *http.Request) {
	s.searchSession(w, r).Mount()
	w.WriteHeader(http.StatusNoContent)
}

// searchUnmount handles POST /ui/search/unmount.
func (s *Server) searchUnmount(w http.ResponseWriter, r *http.Request) {
	s.searchSession(w, r).Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// profileNetwork handles GET /ui/profile/{id}/network?hover=.
func (s *Server) profileNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var h viz.HoverState
	if key := r.URL.Query().Get("hover"); key != "" {
		h = h.Enter(key)
	}
	n, err := s.profiles.Network(r.Context(), id, h)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viz.RenderNetwork(w, n); err != nil {
		s.logger.Error().Err(err).Str("author_id", id).Msg("failed to render network")
	}
}

// themeFromRequest returns the theme stored in the cookie, light by default.
func themeFromRequest(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil && c.Value == themeDark {
		return themeDark
	}
	return themeLight
}

// toggleTheme handles POST /ui/theme/toggle: it flips the theme cookie and
// sends the browser back where it came from.
func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeDark
	if themeFromRequest(r) == themeDark {
		next = themeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int(themeMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, localRedirect(r.Referer()), http.StatusSeeOther)
}

// localRedirect reduces ref to a same-site path, or "/" when it has none.
func localRedirect(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
