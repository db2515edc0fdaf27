package display

import (
	"math"

	"github.com/atip/dashboard/internal/domain"
)

// Coauthor is the display form of a co-author edge.
type Coauthor struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Initials     string `json:"initials"`
	SharedPapers int    `json:"shared_papers"`
	// Strength is the collaboration strength on a 1-5 scale.
	Strength float64 `json:"strength"`
}

// NewCoauthors maps co-author edges to display models. Edges that carry no
// strength get one derived from their shared-paper count relative to the
// strongest collaborator.
func NewCoauthors(edges []domain.CoauthorEdge) []Coauthor {
	out := make([]Coauthor, 0, len(edges))
	maxShared := 0
	for _, e := range edges {
		r := e.Record
		// Edges may nest the co-author under "coauthor" or "author".
		if nested := r.Lookup("coauthor", "author").Record(); !nested.IsZero() {
			r = mergeShared(nested, e.Record)
		}
		name := AuthorName(r)
		c := Coauthor{
			ID:       Optional(r, append([]string{"coauthor_id"}, AuthorIDKeys...)...),
			Name:     name,
			Initials: Initials(name),
		}
		if n, ok := Number(e.Record, SharedPaperKeys...); ok && n > 0 {
			c.SharedPapers = int(n)
		}
		if s, ok := Number(e.Record, StrengthKeys...); ok {
			c.Strength = s
		}
		if c.SharedPapers > maxShared {
			maxShared = c.SharedPapers
		}
		out = append(out, c)
	}
	for i := range out {
		if out[i].Strength <= 0 {
			out[i].Strength = DeriveStrength(out[i].SharedPapers, maxShared)
		}
	}
	return out
}

// DeriveStrength maps a shared-paper count onto 1-5 relative to maxShared.
func DeriveStrength(shared, maxShared int) float64 {
	if shared <= 0 || maxShared <= 0 {
		return 1
	}
	s := math.Ceil(float64(shared) / float64(maxShared) * 5)
	return math.Max(1, math.Min(5, s))
}

// mergeShared keeps the nested identity record but lets the edge-level
// name fields win when the nested record has none.
func mergeShared(nested, edge domain.Record) domain.Record {
	if AuthorName(nested) != NA {
		return nested
	}
	return edge
}
