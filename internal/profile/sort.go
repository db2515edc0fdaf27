package profile

import (
	"sort"
	"strings"

	"github.com/atip/dashboard/internal/display"
)

// SortMode orders the publication list.
type SortMode string

// Publication sort modes.
const (
	SortCitations SortMode = "citations"
	SortYear      SortMode = "year"
	SortVenue     SortMode = "venue"
)

// SortModes lists the modes in toggle order.
var SortModes = []SortMode{SortCitations, SortYear, SortVenue}

// ParseSortMode returns the mode named s, or SortCitations when s is unknown.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortYear, SortVenue:
		return m
	default:
		return SortCitations
	}
}

// Label returns the toggle label of the mode.
func (m SortMode) Label() string {
	switch m {
	case SortYear:
		return "Year"
	case SortVenue:
		return "Venue"
	default:
		return "Citations"
	}
}

// SortPapers returns a sorted copy of papers. Citations and year sort
// descending; venue sorts alphabetically with ties broken by year descending.
// Papers missing the sort key go last.
func SortPapers(papers []display.Paper, mode SortMode) []display.Paper {
	out := append([]display.Paper(nil), papers...)
	var less func(a, b display.Paper) bool
	switch mode {
	case SortYear:
		less = byYearDesc
	case SortVenue:
		less = func(a, b display.Paper) bool {
			va, vb := strings.ToLower(a.VenueSort), strings.ToLower(b.VenueSort)
			if va != vb {
				if va == "" || vb == "" {
					return vb == ""
				}
				return va < vb
			}
			return byYearDesc(a, b)
		}
	default:
		less = func(a, b display.Paper) bool {
			if a.HasCitations != b.HasCitations {
				return a.HasCitations
			}
			return a.CitationsNum > b.CitationsNum
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byYearDesc(a, b display.Paper) bool {
	if a.HasYear != b.HasYear {
		return a.HasYear
	}
	return a.YearNum > b.YearNum
}
