// Package viz turns a filtered catalog view into chart artifacts. Each chart
// identifier maps to one fixed recipe that builds a Figure; a Renderer draws
// the Figure as SVG.
package viz

import "exodash/internal/domain"

// Kind is the chart type of a figure.
type Kind int

const (
	KindDonut Kind = iota
	KindHistogram
	KindScatter
)

// Axis describes one plot axis. A non-nil Categories slice makes the axis
// categorical: point coordinates are indexes into it.
type Axis struct {
	Label      string
	Categories []string
}

// Categorical reports whether values on the axis are category indexes.
func (a Axis) Categorical() bool { return a.Categories != nil }

// Slice is one donut segment.
type Slice struct {
	Label string
	Count int
}

// Bin is one histogram bucket [Lo, Hi) with a count per figure group.
// The last bin of a histogram also includes Hi.
type Bin struct {
	Lo     float64
	Hi     float64
	Counts []int
}

// Total returns the bin height.
func (b Bin) Total() int {
	n := 0
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// Point is one scatter marker. Size and Color are only meaningful when the
// figure has SizeBy or a continuous color scale.
type Point struct {
	X     float64
	Y     float64
	Size  float64
	Color float64
}

// Series is a named group of scatter points drawn in one color.
type Series struct {
	Name   string
	Points []Point
}

// ColorScale is a continuous color encoding over [Min, Max].
type ColorScale struct {
	Min float64
	Max float64
}

// Figure is the renderer-independent description of one chart.
type Figure struct {
	ID    domain.ChartID
	Title string
	Kind  Kind
	X     Axis
	Y     Axis

	Hole   float64
	Slices []Slice

	Groups []string
	Bins   []Bin

	Series     []Series
	SizeBy     string
	ColorBy    string
	Continuous *ColorScale
}

// Count returns the number of rows represented in the figure.
func (f *Figure) Count() int {
	n := 0
	switch f.Kind {
	case KindDonut:
		for _, s := range f.Slices {
			n += s.Count
		}
	case KindHistogram:
		for _, b := range f.Bins {
			n += b.Total()
		}
	case KindScatter:
		for _, s := range f.Series {
			n += len(s.Points)
		}
	}
	return n
}

// Empty reports whether there is nothing to draw.
func (f *Figure) Empty() bool { return f.Count() == 0 }

// LegendEntry pairs a label with its CSS hex color.
type LegendEntry struct {
	Label string
	Color string
}

// Legend returns the color key of the figure.
func (f *Figure) Legend() []LegendEntry {
	switch {
	case f.Kind == KindDonut:
		out := make([]LegendEntry, len(f.Slices))
		for i, s := range f.Slices {
			out[i] = LegendEntry{Label: s.Label, Color: GroupColor(i)}
		}
		return out
	case f.Kind == KindHistogram:
		out := make([]LegendEntry, len(f.Groups))
		for i, g := range f.Groups {
			out[i] = LegendEntry{Label: g, Color: GroupColor(i)}
		}
		return out
	case f.Continuous != nil:
		return []LegendEntry{
			{Label: f.ColorBy + " " + formatValue(f.Continuous.Min), Color: ScaleColor(0)},
			{Label: f.ColorBy + " " + formatValue(f.Continuous.Max), Color: ScaleColor(1)},
		}
	default:
		out := make([]LegendEntry, len(f.Series))
		for i, s := range f.Series {
			out[i] = LegendEntry{Label: s.Name, Color: GroupColor(i)}
		}
		return out
	}
}
