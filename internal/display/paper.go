package display

import (
	"strconv"

	"github.com/atip/dashboard/internal/domain"
)

// Paper is the canonical display form of a paper record.
type Paper struct {
	// Key identifies the row for expansion; the paper id when present,
	// otherwise its position in the fetched list.
	Key       string   `json:"key"`
	Title     string   `json:"title"`
	Venue     string   `json:"venue"`
	Year      string   `json:"year"`
	Citations string   `json:"citations"`
	Abstract  string   `json:"abstract"`
	Authors   []string `json:"authors"`

	YearNum      float64 `json:"-"`
	HasYear      bool    `json:"-"`
	CitationsNum float64 `json:"-"`
	HasCitations bool    `json:"-"`
	// VenueSort is the raw venue, empty when absent.
	VenueSort string `json:"-"`
}

// NewPaper builds the display model of the paper at position index.
func NewPaper(r domain.Record, index int) Paper {
	p := Paper{
		Key:       Optional(r, PaperIDKeys...),
		Title:     Text(r, TitleKeys...),
		Venue:     Text(r, VenueKeys...),
		Year:      Text(r, YearKeys...),
		Citations: Count(r, PaperCiteKeys...),
		Abstract:  Text(r, AbstractKeys...),
		VenueSort: Optional(r, VenueKeys...),
	}
	if p.Key == "" {
		p.Key = "row-" + strconv.Itoa(index)
	}
	p.YearNum, p.HasYear = Number(r, YearKeys...)
	p.CitationsNum, p.HasCitations = Number(r, PaperCiteKeys...)

	for _, v := range r.Lookup(AuthorsKeys...).Array() {
		if rec := v.Record(); !rec.IsZero() {
			if name := AuthorName(rec); name != NA {
				p.Authors = append(p.Authors, name)
			}
			continue
		}
		if s := v.String(); s != "" {
			p.Authors = append(p.Authors, s)
		}
	}
	return p
}
