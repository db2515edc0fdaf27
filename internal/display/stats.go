package display

import "github.com/atip/dashboard/internal/domain"

// Stats is the display form of /stats/overview.
type Stats struct {
	Researchers string `json:"total_researchers"`
	Papers      string `json:"total_papers"`
	Venues      string `json:"total_venues"`
}

// NewStats builds the stat cards.
func NewStats(s domain.StatsOverview) Stats {
	return Stats{
		Researchers: Count(s.Record, TotalResearchersKeys...),
		Papers:      Count(s.Record, TotalPapersKeys...),
		Venues:      Count(s.Record, TotalVenuesKeys...),
	}
}

// RankedAuthor is an entry of a ranking rendered with its metric score.
type RankedAuthor struct {
	Rank        int      `json:"rank"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Affiliation string   `json:"affiliation"`
	Score       string   `json:"score"`
	Papers      string   `json:"papers"`
	Citations   string   `json:"citations"`
	Career      string   `json:"career_length"`
	Tags        []string `json:"tags,omitempty"`
	ScoreValue  float64  `json:"-"`
	HasScore    bool     `json:"-"`
}

// EntryAuthor returns the author part of a ranking entry: the nested "author"
// object when the API wraps it, otherwise the entry itself.
func EntryAuthor(e domain.RankingEntry) domain.Record {
	if nested := e.Lookup("author").Record(); !nested.IsZero() {
		return nested
	}
	return e.Record
}

// EntryScore returns the metric score of a ranking entry.
func EntryScore(e domain.RankingEntry, m domain.Metric) (float64, bool) {
	if f, ok := Number(e.Record, ScoreKeys(m)...); ok {
		return f, true
	}
	return Number(EntryAuthor(e), MetricKeys(m)...)
}

// NewRankedAuthor renders the ranking entry shown at position rank.
func NewRankedAuthor(e domain.RankingEntry, m domain.Metric, rank int) RankedAuthor {
	author := EntryAuthor(e)
	ra := RankedAuthor{
		Rank:        rank,
		ID:          Optional(author, RankingAuthorIDKeys...),
		Name:        AuthorName(author),
		Affiliation: Text(author, AffiliationKeys...),
		Score:       NA,
		Papers:      Count(author, PaperCountKeys...),
		Citations:   Count(author, CitationKeys...),
		Career:      careerText(author),
	}
	for _, v := range e.Lookup("tags").Array() {
		if tag := v.String(); tag != "" {
			ra.Tags = append(ra.Tags, tag)
		}
	}
	if ra.ID == "" {
		ra.ID = Optional(e.Record, RankingAuthorIDKeys...)
	}
	if f, ok := EntryScore(e, m); ok {
		ra.ScoreValue, ra.HasScore = f, true
		ra.Score = domain.FormatNumber(f)
	}
	return ra
}
