package leaderboard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/atip/dashboard/internal/domain"
)

// Career stage buckets.
const (
	CareerAll    = "all"
	CareerEarly  = "early"
	CareerMid    = "mid"
	CareerSenior = "senior"
)

// Sort orders.
const (
	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// AffiliationAll disables the affiliation filter.
const AffiliationAll = "all"

// Option is a value of a filter select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AffiliationOptions are the selectable affiliation tokens.
var AffiliationOptions = []Option{
	{Value: AffiliationAll, Label: "All Affiliations"},
	{Value: "stanford", Label: "Stanford University"},
	{Value: "mit", Label: "MIT"},
	{Value: "berkeley", Label: "UC Berkeley"},
	{Value: "harvard", Label: "Harvard University"},
}

// CareerOptions are the selectable career stages.
var CareerOptions = []Option{
	{Value: CareerAll, Label: "All Career Stages"},
	{Value: CareerEarly, Label: "Early Career (<5 years)"},
	{Value: CareerMid, Label: "Mid Career (5-15 years)"},
	{Value: CareerSenior, Label: "Senior (>15 years)"},
}

// OrderOptions are the selectable sort orders.
var OrderOptions = []Option{
	{Value: OrderDesc, Label: "Highest to Lowest"},
	{Value: OrderAsc, Label: "Lowest to Highest"},
}

// Filter is the leaderboard view state carried in the URL query.
type Filter struct {
	Metric      domain.Metric `json:"metric"`
	Affiliation string        `json:"affiliation" validate:"required,max=100"`
	Career      string        `json:"career" validate:"oneof=all early mid senior"`
	Order       string        `json:"order" validate:"oneof=asc desc"`
}

// DefaultFilter is the state of a bare /leaderboards visit.
func DefaultFilter() Filter {
	return Filter{
		Metric:      domain.MetricANCI,
		Affiliation: AffiliationAll,
		Career:      CareerAll,
		Order:       OrderDesc,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseFilter reads the filter from query parameters. Missing values take
// their defaults and an unknown metric falls back to ANCI; any other invalid
// value is a *domain.ValidationError.
func ParseFilter(q url.Values) (Filter, error) {
	f := DefaultFilter()
	if m, ok := domain.ParseMetric(q.Get("metric")); ok {
		f.Metric = m
	}
	if v := strings.TrimSpace(q.Get("affiliation")); v != "" {
		f.Affiliation = strings.ToLower(v)
	}
	if v := strings.TrimSpace(q.Get("career")); v != "" {
		f.Career = strings.ToLower(v)
	}
	if v := strings.TrimSpace(q.Get("order")); v != "" {
		f.Order = strings.ToLower(v)
	}

	if err := f.Validate(); err != nil {
		return DefaultFilter(), err
	}
	return f, nil
}

// Validate checks the filter fields.
func (f Filter) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(strings.ToLower(fe.Field()), fmt.Sprintf("failed %q check with value %q", fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("validating filter: %w", err)
}

// Query encodes the filter as URL query parameters.
func (f Filter) Query() url.Values {
	return url.Values{
		"metric":      {string(f.Metric)},
		"affiliation": {f.Affiliation},
		"career":      {f.Career},
		"order":       {f.Order},
	}
}

// URL returns the shareable leaderboard URL for the filter.
func (f Filter) URL() string {
	return "/leaderboards?" + f.Query().Encode()
}

// WithMetric returns the filter with another active metric.
func (f Filter) WithMetric(m domain.Metric) Filter {
	f.Metric = m
	return f
}

// Toggled returns the filter with the sort order reversed.
func (f Filter) Toggled() Filter {
	if f.Order == OrderAsc {
		f.Order = OrderDesc
	} else {
		f.Order = OrderAsc
	}
	return f
}

// CareerStage buckets a career length in years: early below 5, mid from 5 to
// 15 inclusive, senior above 15.
func CareerStage(years float64) string {
	switch {
	case years < 5:
		return CareerEarly
	case years <= 15:
		return CareerMid
	default:
		return CareerSenior
	}
}
