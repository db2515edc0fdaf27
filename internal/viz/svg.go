package viz

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.svg.tmpl
var templateFS embed.FS

var svgTemplates = template.Must(
	template.New("viz").
		Funcs(template.FuncMap{"coord": coord}).
		ParseFS(templateFS, "templates/*.svg.tmpl"),
)

// RenderRadar writes r as an inline SVG element.
func RenderRadar(w io.Writer, r Radar) error {
	if err := svgTemplates.ExecuteTemplate(w, "radar", r); err != nil {
		return fmt.Errorf("rendering radar: %w", err)
	}
	return nil
}

// RenderNetwork writes n as an inline SVG element.
func RenderNetwork(w io.Writer, n Network) error {
	if err := svgTemplates.ExecuteTemplate(w, "network", n); err != nil {
		return fmt.Errorf("rendering network: %w", err)
	}
	return nil
}

// RadarHTML renders r for embedding in a page template.
func RadarHTML(r Radar) (template.HTML, error) {
	var buf bytes.Buffer
	if err := RenderRadar(&buf, r); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// NetworkHTML renders n for embedding in a page template.
func NetworkHTML(n Network) (template.HTML, error) {
	var buf bytes.Buffer
	if err := RenderNetwork(&buf, n); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
