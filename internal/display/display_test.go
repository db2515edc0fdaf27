package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atip/dashboard/internal/domain"
)

func record(t *testing.T, js string) domain.Record {
	t.Helper()
	r := domain.NewRecord([]byte(js))
	require.False(t, r.IsZero(), "fixture must be a non-empty object")
	return r
}

func TestNewAuthor(t *testing.T) {
	t.Run("normalizes aliases", func(t *testing.T) {
		a := NewAuthor(record(t, `{
			"id": 143977260,
			"first_name": "Sarah",
			"last_name": "Chen",
			"affiliation": "Stanford University",
			"homepage": "https://cs.stanford.edu/~schen",
			"careerLength": "12 years",
			"publication_count": 127,
			"citations": 15420,
			"hIndex": 42,
			"anci": 95.8,
			"pqi": 88,
			"accel": 12.5
		}`))

		assert.Equal(t, "143977260", a.ID)
		assert.Equal(t, "Sarah Chen", a.Name)
		assert.Equal(t, "SC", a.Initials)
		assert.Equal(t, "Stanford University", a.Affiliation)
		assert.Equal(t, "https://cs.stanford.edu/~schen", a.Homepage)
		assert.Equal(t, "12 years", a.CareerLength)
		assert.Equal(t, "127", a.TotalPapers)
		assert.Equal(t, "15,420", a.TotalCitations)
		assert.Equal(t, "42", a.HIndex)

		require.Len(t, a.Metrics, 6)
		assert.Equal(t, "95.8", a.Metrics[0].Value)
		assert.Equal(t, "12.5", a.Metrics[2].Value)
		assert.Equal(t, NA, a.Metrics[4].Value)
		assert.True(t, HasData(a.Metrics))
	})

	t.Run("missing citation_count renders N/A", func(t *testing.T) {
		a := NewAuthor(record(t, `{"id":"7","name":"Grace Hopper","citation_count":null,"affiliation":""}`))

		assert.Equal(t, NA, a.TotalCitations)
		assert.Equal(t, NA, a.Affiliation)
		assert.Equal(t, NA, a.CareerLength)
		assert.Equal(t, "Grace Hopper", a.Name)
		assert.Empty(t, a.Homepage)
	})

	t.Run("numeric career length gets a unit", func(t *testing.T) {
		assert.Equal(t, "16 years", NewAuthor(record(t, `{"career_length":16}`)).CareerLength)
		assert.Equal(t, "1 year", NewAuthor(record(t, `{"career_length":1}`)).CareerLength)
	})

	t.Run("all-zero metrics have no data", func(t *testing.T) {
		a := NewAuthor(record(t, `{"anci":0,"pqi":"0","cagr":null}`))
		assert.False(t, HasData(a.Metrics))
	})

	t.Run("no name at all", func(t *testing.T) {
		a := NewAuthor(record(t, `{"id":1}`))
		assert.Equal(t, NA, a.Name)
		assert.Equal(t, "?", a.Initials)
	})
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "MR", Initials("M. Rodriguez"))
	assert.Equal(t, "AL", Initials("ada lovelace king"))
	assert.Equal(t, "É", Initials("Émile"))
	assert.Equal(t, "?", Initials("42"))
}

func TestNewPaper(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		p := NewPaper(record(t, `{
			"paper_id": 219965343,
			"title": "Federated Learning with Differential Privacy Guarantees",
			"venue": "ICLR",
			"year": 2022,
			"citation_count": 2134,
			"authors": ["S. Chen", {"first_name":"D.","last_name":"Smith"}, ""],
			"abstract": "A framework."
		}`), 3)

		assert.Equal(t, "219965343", p.Key)
		assert.Equal(t, "ICLR", p.Venue)
		assert.Equal(t, "2022", p.Year)
		assert.Equal(t, "2,134", p.Citations)
		assert.Equal(t, []string{"S. Chen", "D. Smith"}, p.Authors)
		assert.True(t, p.HasYear)
		assert.Equal(t, 2134.0, p.CitationsNum)
	})

	t.Run("sparse record falls back", func(t *testing.T) {
		p := NewPaper(record(t, `{"title":"Untitled draft"}`), 4)

		assert.Equal(t, "row-4", p.Key)
		assert.Equal(t, NA, p.Venue)
		assert.Equal(t, NA, p.Year)
		assert.Equal(t, NA, p.Citations)
		assert.Equal(t, NA, p.Abstract)
		assert.Empty(t, p.VenueSort)
		assert.False(t, p.HasCitations)
	})
}

func TestNewCoauthors(t *testing.T) {
	edges := []domain.CoauthorEdge{
		{Record: record(t, `{"coauthor_id":1,"name":"M. Rodriguez","shared_papers":23}`)},
		{Record: record(t, `{"coauthor":{"id":2,"first_name":"Alex","last_name":"Johnson"},"papers_together":12}`)},
		{Record: record(t, `{"name":"K. Zhang","shared_papers":2,"strength":3}`)},
	}

	got := NewCoauthors(edges)
	require.Len(t, got, 3)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 23, got[0].SharedPapers)
	assert.Equal(t, 5.0, got[0].Strength)

	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "Alex Johnson", got[1].Name)
	assert.Equal(t, "AJ", got[1].Initials)
	assert.Equal(t, 3.0, got[1].Strength)

	assert.Equal(t, 3.0, got[2].Strength, "explicit strength wins")
}

func TestDeriveStrength(t *testing.T) {
	assert.Equal(t, 1.0, DeriveStrength(0, 10))
	assert.Equal(t, 1.0, DeriveStrength(1, 100))
	assert.Equal(t, 3.0, DeriveStrength(5, 10))
	assert.Equal(t, 5.0, DeriveStrength(10, 10))
}

func TestNewStats(t *testing.T) {
	s := NewStats(domain.StatsOverview{Record: record(t, `{"total_researchers":128450,"total_papers":null}`)})

	assert.Equal(t, "128,450", s.Researchers)
	assert.Equal(t, NA, s.Papers)
	assert.Equal(t, NA, s.Venues)
}

func TestNewRankedAuthor(t *testing.T) {
	t.Run("flat entry", func(t *testing.T) {
		e := domain.RankingEntry{Record: record(t, `{"author_id":9,"first_name":"Jo","last_name":"Smith","score":71.256,"career_length":4}`)}
		ra := NewRankedAuthor(e, domain.MetricANCI, 1)

		assert.Equal(t, 1, ra.Rank)
		assert.Equal(t, "9", ra.ID)
		assert.Equal(t, "Jo Smith", ra.Name)
		assert.Equal(t, "71.26", ra.Score)
		assert.Equal(t, "4 years", ra.Career)
		assert.Equal(t, NA, ra.Affiliation)
		assert.True(t, ra.HasScore)
	})

	t.Run("nested author and metric-named score", func(t *testing.T) {
		e := domain.RankingEntry{Record: record(t, `{"rank":3,"author":{"id":5,"name":"Ada"},"pqi":64}`)}
		ra := NewRankedAuthor(e, domain.MetricPQI, 2)

		assert.Equal(t, "5", ra.ID)
		assert.Equal(t, "Ada", ra.Name)
		assert.Equal(t, "64", ra.Score)
	})

	t.Run("missing score", func(t *testing.T) {
		e := domain.RankingEntry{Record: record(t, `{"author_id":1}`)}
		ra := NewRankedAuthor(e, domain.MetricCAGR, 1)

		assert.Equal(t, NA, ra.Score)
		assert.False(t, ra.HasScore)
	})
}
