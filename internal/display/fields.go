// Package display maps ATIP wire records onto the canonical field set the
// dashboard renders. Every field has an alias list, tried in order, and a
// literal "N/A" fallback for null, missing or empty-string values.
package display

import "github.com/atip/dashboard/internal/domain"

// NA is rendered for any field the API left null, missing or empty.
const NA = "N/A"

// Author field aliases.
var (
	AuthorIDKeys    = []string{"id", "author_id", "authorId"}
	FirstNameKeys   = []string{"first_name", "firstName"}
	LastNameKeys    = []string{"last_name", "lastName"}
	FullNameKeys    = []string{"name", "full_name", "fullName", "display_name", "coauthor_name"}
	AffiliationKeys = []string{"affiliation", "institution", "affiliation_name"}
	HomepageKeys    = []string{"homepage", "homepage_url", "homepageUrl"}
	CitationKeys    = []string{"citation_count", "citations", "citationCount", "total_citations", "totalCitations"}
	PaperCountKeys  = []string{"publication_count", "paper_count", "total_papers", "totalPapers", "publicationCount"}
	CareerKeys      = []string{"career_length", "careerLength"}
	HIndexKeys      = []string{"h_index", "hIndex", "hindex"}
	FADKeys         = []string{"first_author_dominance", "firstAuthorDominance", "metrics.first_author_dominance"}
	SummaryKeys     = []string{"ai_summary", "aiSummary", "summary", "bio"}
)

// RankingAuthorIDKeys prefers the author id over a ranking row's own id.
var RankingAuthorIDKeys = []string{"author_id", "authorId", "id"}

// Paper field aliases.
var (
	PaperIDKeys   = []string{"id", "paper_id", "paperId"}
	TitleKeys     = []string{"title", "name"}
	VenueKeys     = []string{"venue", "venue_name", "journal"}
	YearKeys      = []string{"year", "publication_year", "publicationYear"}
	AbstractKeys  = []string{"abstract"}
	AuthorsKeys   = []string{"authors", "author_names", "authorNames"}
	PaperCiteKeys = []string{"citation_count", "citations", "citationCount", "cited_by_count"}
)

// Co-author field aliases.
var (
	SharedPaperKeys = []string{"shared_papers", "papers_together", "shared_paper_count", "paper_count", "papers", "count", "collaborations"}
	StrengthKeys    = []string{"strength", "collaboration_strength"}
)

// Stats overview aliases.
var (
	TotalResearchersKeys = []string{"total_researchers", "total_authors", "researchers"}
	TotalPapersKeys      = []string{"total_papers", "papers"}
	TotalVenuesKeys      = []string{"total_venues", "venues"}
)

// MetricKeys returns the aliases under which an author record may carry m.
func MetricKeys(m domain.Metric) []string {
	switch m {
	case domain.MetricANCI:
		return []string{"anci", "anci_score", "ANCI", "metrics.anci"}
	case domain.MetricCAGR:
		return []string{"cagr", "accel", "cagr_score", "CAGR", "metrics.cagr"}
	case domain.MetricPQI:
		return []string{"pqi", "pqi_score", "PQI", "metrics.pqi"}
	}
	return []string{string(m)}
}

// ScoreKeys returns the aliases of a ranking entry's score for m: the generic
// score field first, then the metric's own name.
func ScoreKeys(m domain.Metric) []string {
	return append([]string{"score", "value"}, MetricKeys(m)...)
}

// Text renders the first present alias, or NA.
func Text(r domain.Record, keys ...string) string {
	v := r.Lookup(keys...)
	if !v.Present() {
		return NA
	}
	return v.String()
}

// Optional renders the first present alias, or "" when absent.
func Optional(r domain.Record, keys ...string) string {
	v := r.Lookup(keys...)
	if !v.Present() {
		return ""
	}
	return v.String()
}

// Number returns the first alias that holds a number (or a string starting
// with one).
func Number(r domain.Record, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := r.Lookup(key).Float(); ok {
			return f, true
		}
	}
	return 0, false
}
