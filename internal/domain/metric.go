package domain

import "strings"

// Metric identifies one of the externally computed ranking metrics.
type Metric string

// Ranking metrics served by /rankings/{metric}.
const (
	MetricANCI Metric = "anci"
	MetricCAGR Metric = "cagr"
	MetricPQI  Metric = "pqi"
)

// AllMetrics lists the ranking metrics in tab order.
var AllMetrics = []Metric{MetricANCI, MetricCAGR, MetricPQI}

// ParseMetric resolves a metric name. "accel" is accepted as the legacy
// name of CAGR.
func ParseMetric(s string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anci":
		return MetricANCI, true
	case "cagr", "accel":
		return MetricCAGR, true
	case "pqi":
		return MetricPQI, true
	}
	return "", false
}

// Label returns the short display name.
func (m Metric) Label() string {
	switch m {
	case MetricANCI:
		return "ANCI"
	case MetricCAGR:
		return "CAGR"
	case MetricPQI:
		return "PQI"
	}
	return strings.ToUpper(string(m))
}

// Description returns the one-line explanation shown under the metric tab.
func (m Metric) Description() string {
	switch m {
	case MetricANCI:
		return "Academic Network Citation Index - measures research network impact"
	case MetricCAGR:
		return "Compound Annual Growth Rate - tracks momentum in recent work"
	case MetricPQI:
		return "Publication Quality Index - evaluates venue prestige and impact"
	}
	return ""
}
