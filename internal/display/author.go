package display

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/atip/dashboard/internal/domain"
)

// Author is the canonical display form of an author record.
type Author struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Initials       string       `json:"initials"`
	Affiliation    string       `json:"affiliation"`
	Homepage       string       `json:"homepage,omitempty"`
	CareerLength   string       `json:"career_length"`
	TotalPapers    string       `json:"total_papers"`
	TotalCitations string       `json:"total_citations"`
	HIndex         string       `json:"h_index"`
	Summary        string       `json:"summary,omitempty"`
	Metrics        []MetricTile `json:"metrics"`
}

// MetricTile is one named metric of the metric panel.
type MetricTile struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	Numeric  float64 `json:"-"`
	HasValue bool    `json:"-"`
}

// HasData reports whether at least one tile holds a non-zero number. When it
// does not, the panel shows a single placeholder instead of the table.
func HasData(tiles []MetricTile) bool {
	for _, t := range tiles {
		if t.HasValue && t.Numeric != 0 {
			return true
		}
	}
	return false
}

// profileMetric describes a tile of the profile metric panel.
type profileMetric struct {
	key   string
	label string
	keys  []string
}

var profileMetrics = []profileMetric{
	{key: string(domain.MetricANCI), label: domain.MetricANCI.Label(), keys: MetricKeys(domain.MetricANCI)},
	{key: string(domain.MetricPQI), label: domain.MetricPQI.Label(), keys: MetricKeys(domain.MetricPQI)},
	{key: string(domain.MetricCAGR), label: domain.MetricCAGR.Label(), keys: MetricKeys(domain.MetricCAGR)},
	{key: "h_index", label: "h-index", keys: HIndexKeys},
	{key: "first_author_dominance", label: "First-Author Dominance", keys: FADKeys},
	{key: "career_length", label: "Career Length", keys: CareerKeys},
}

// RadarKeys are the tiles plotted on the profile radar, all on a 0-100 scale.
var RadarKeys = []string{string(domain.MetricANCI), string(domain.MetricPQI), string(domain.MetricCAGR), "first_author_dominance"}

// NewAuthor builds the display model of an author record.
func NewAuthor(r domain.Record) Author {
	name := AuthorName(r)
	a := Author{
		ID:             Optional(r, AuthorIDKeys...),
		Name:           name,
		Initials:       Initials(name),
		Affiliation:    Text(r, AffiliationKeys...),
		Homepage:       Optional(r, HomepageKeys...),
		CareerLength:   careerText(r),
		TotalPapers:    Count(r, PaperCountKeys...),
		TotalCitations: Count(r, CitationKeys...),
		HIndex:         Text(r, HIndexKeys...),
		Summary:        Optional(r, SummaryKeys...),
	}
	for _, m := range profileMetrics {
		tile := MetricTile{Key: m.key, Label: m.label, Value: NA}
		if v := r.Lookup(m.keys...); v.Present() {
			tile.Value = v.String()
			tile.Numeric, tile.HasValue = v.Float()
		}
		a.Metrics = append(a.Metrics, tile)
	}
	return a
}

// AuthorName joins first and last name, falling back to a full-name field,
// then NA.
func AuthorName(r domain.Record) string {
	first := Optional(r, FirstNameKeys...)
	last := Optional(r, LastNameKeys...)
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	return Text(r, FullNameKeys...)
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	if name == NA {
		return "?"
	}
	var out []rune
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// Count renders an integer field with thousands separators, e.g. 15,420.
func Count(r domain.Record, keys ...string) string {
	v := r.Lookup(keys...)
	if !v.Present() {
		return NA
	}
	if v.IsNumber() {
		f, _ := v.Float()
		if f == float64(int64(f)) {
			return humanize.Comma(int64(f))
		}
		return humanize.CommafWithDigits(f, 2)
	}
	return v.String()
}

// CareerYears returns the numeric career length, parsed from strings like
// "12 years".
func CareerYears(r domain.Record) (float64, bool) {
	return Number(r, CareerKeys...)
}

func careerText(r domain.Record) string {
	v := r.Lookup(CareerKeys...)
	if !v.Present() {
		return NA
	}
	if v.IsNumber() {
		f, _ := v.Float()
		if f == 1 {
			return "1 year"
		}
		return domain.FormatNumber(f) + " years"
	}
	return v.String()
}
