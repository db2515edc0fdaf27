package httpserver

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/atip/dashboard/internal/suggest"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	pageHome         = "home"
	pageLeaderboards = "leaderboards"
	pageProfile      = "profile"
	pagePlaceholder  = "placeholder"
	pageNotFound     = "not_found"
	pageAPIDebug     = "api_debug"
)

var pageNames = []string{pageHome, pageLeaderboards, pageProfile, pagePlaceholder, pageNotFound, pageAPIDebug}

// pages holds one template set per page: the shared layout plus the page's
// "content" block.
var pages = parsePages()

// templateFuncs are shared by every page set.
var templateFuncs = template.FuncMap{
	"selectVals":         selectVals,
	"searchErrorMessage": func() string { return suggest.ErrorMessage },
}

// selectVals encodes the hx-vals payload that selects suggestion id.
func selectVals(id string) (string, error) {
	b, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parsePages() map[string]*template.Template {
	base := template.Must(template.New("layout").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

// page is the layout model shared by every page.
type page struct {
	Title    string
	Theme    string
	Path     string
	Search   suggest.View
	Error    string
	NotFound bool
	Data     any
}

// render executes the named page into a buffer and writes it with status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.Theme = themeFromRequest(r)
	p.Path = r.URL.Path
	p.Search = s.searchView(r)

	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		s.metrics.RecordPageError(name)
		s.logger.Error().Err(err).Str("page", name).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError renders the named page in its error state.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, name, title, message string) {
	s.render(w, r, status, name, page{
		Title:    title,
		Error:    message,
		NotFound: status == http.StatusNotFound,
	})
}

// renderFragment executes a named block without the layout.
func (s *Server) renderFragment(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages[pageNotFound].ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error().Err(err).Str("fragment", name).Msg("failed to render fragment")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
