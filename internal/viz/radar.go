// Package viz computes the geometry of the profile visualizations and renders
// it as inline SVG.
package viz

import (
	"fmt"
	"math"
	"strings"
)

// Radar chart dimensions.
const (
	RadarSize     = 200.0
	radarPadding  = 20.0
	labelOffset   = 15.0
	ringCount     = 5
	radarMaxValue = 100.0
)

// Point is a 2D coordinate in SVG user units.
type Point struct {
	X float64
	Y float64
}

// Axis is one named value of a radar chart.
type Axis struct {
	Label string
	Value float64
}

// RadarAxis is a laid-out radar axis.
type RadarAxis struct {
	Label string
	Value float64
	// Point is the data point; End is the outer end of the guide line;
	// LabelAt is where the label is drawn.
	Point   Point
	End     Point
	LabelAt Point
}

// Radar is the geometry of a radar chart.
type Radar struct {
	Size      float64
	Center    Point
	MaxRadius float64
	Axes      []RadarAxis
	// Rings are the radii of the guide rings, innermost first.
	Rings []float64
	// Path is the closed data polygon; empty when Empty is set.
	Path  string
	Empty bool
}

// NewRadar lays out axes evenly around a circle starting at the top. Values
// are clamped to [0,100] and scaled against the max radius. When every value
// is zero the radar is Empty and has no polygon.
func NewRadar(axes []Axis) Radar {
	center := RadarSize / 2
	r := Radar{
		Size:      RadarSize,
		Center:    Point{X: center, Y: center},
		MaxRadius: RadarSize/2 - radarPadding,
		Empty:     true,
	}
	for i := 1; i <= ringCount; i++ {
		r.Rings = append(r.Rings, r.MaxRadius*float64(i)/ringCount)
	}

	n := len(axes)
	var path strings.Builder
	for i, a := range axes {
		angle := float64(i)*2*math.Pi/float64(n) - math.Pi/2
		v := clamp(a.Value)
		if v != 0 {
			r.Empty = false
		}
		radius := v / radarMaxValue * r.MaxRadius
		ax := RadarAxis{
			Label:   a.Label,
			Value:   v,
			Point:   polar(r.Center, radius, angle),
			End:     polar(r.Center, r.MaxRadius, angle),
			LabelAt: polar(r.Center, r.MaxRadius+labelOffset, angle),
		}
		r.Axes = append(r.Axes, ax)

		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s %s,%s ", cmd, coord(ax.Point.X), coord(ax.Point.Y))
	}
	if !r.Empty {
		r.Path = path.String() + "Z"
	}
	return r
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, radarMaxValue)
}

func polar(c Point, radius, angle float64) Point {
	return Point{X: c.X + radius*math.Cos(angle), Y: c.Y + radius*math.Sin(angle)}
}

// coord formats an SVG coordinate with at most two decimals.
func coord(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
