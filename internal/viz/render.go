package viz

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Renderer draws a figure.
type Renderer interface {
	Render(w io.Writer, f *Figure) error
}

// SVGRenderer draws figures as dark themed SVG documents with go-chart.
type SVGRenderer struct {
	Width  int
	Height int
}

// NewSVGRenderer returns a renderer with the dashboard chart size.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{Width: 860, Height: 480}
}

var (
	colorBackground = drawing.ColorFromHex("111111")
	colorForeground = drawing.ColorFromHex("f2f5fa")
	colorGrid       = drawing.ColorFromHex("283442")
)

const (
	minDot = 3.0
	maxDot = 14.0

	donutTitleHeight = 40
	// Slices narrower than this many radians get no percentage label.
	minLabelAngle = 0.2
)

// Render writes f as SVG. Figures without data render as a labelled empty plot.
func (r *SVGRenderer) Render(w io.Writer, f *Figure) error {
	if f.Empty() {
		return r.renderEmpty(w, f)
	}
	switch f.Kind {
	case KindDonut:
		return r.renderDonut(w, f)
	case KindHistogram:
		return r.renderHistogram(w, f)
	case KindScatter:
		return r.renderScatter(w, f)
	}
	return fmt.Errorf("unsupported figure kind %d", f.Kind)
}

func (r *SVGRenderer) base(title string) chart.Chart {
	return chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: colorForeground, FontSize: 14},
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{
			FillColor: colorBackground,
			Padding:   chart.Box{Top: 56, Left: 24, Right: 32, Bottom: 24},
		},
		Canvas: chart.Style{FillColor: colorBackground},
	}
}

func axisStyle() chart.Style {
	return chart.Style{FontColor: colorForeground, StrokeColor: colorGrid, FontSize: 9}
}

func xAxis(a Axis, rng chart.Range) chart.XAxis {
	ax := chart.XAxis{
		Name:           a.Label,
		NameStyle:      chart.Style{FontColor: colorForeground},
		Style:          axisStyle(),
		Range:          rng,
		ValueFormatter: tickLabel,
	}
	if a.Categorical() {
		ax.Ticks = categoryTicks(a.Categories)
		ax.Style.TextRotationDegrees = 45
	}
	return ax
}

func yAxis(a Axis, rng chart.Range) chart.YAxis {
	ax := chart.YAxis{
		Name:           a.Label,
		NameStyle:      chart.Style{FontColor: colorForeground},
		Style:          axisStyle(),
		Range:          rng,
		ValueFormatter: tickLabel,
	}
	if a.Categorical() {
		ax.Ticks = categoryTicks(a.Categories)
	}
	return ax
}

func categoryTicks(cats []string) []chart.Tick {
	ticks := make([]chart.Tick, len(cats))
	for i, c := range cats {
		ticks[i] = chart.Tick{Value: float64(i), Label: c}
	}
	return ticks
}

// span returns a padded non-degenerate range covering lo..hi.
func span(lo, hi float64) *chart.ContinuousRange {
	if lo == hi {
		d := math.Abs(lo) * 0.1
		if d == 0 {
			d = 1
		}
		return &chart.ContinuousRange{Min: lo - d, Max: hi + d}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func categoryRange(n int) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5}
}

func (r *SVGRenderer) renderEmpty(w io.Writer, f *Figure) error {
	c := r.base(f.Title + " (no data)")
	rng := &chart.ContinuousRange{Min: 0, Max: 1}
	c.XAxis = xAxis(Axis{Label: f.X.Label}, rng)
	c.YAxis = yAxis(Axis{Label: f.Y.Label}, &chart.ContinuousRange{Min: 0, Max: 1})
	c.Series = []chart.Series{
		chart.ContinuousSeries{
			Name:    "empty",
			Style:   chart.Style{StrokeWidth: chart.Disabled, StrokeColor: drawing.ColorTransparent},
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
		},
	}
	return c.Render(chart.SVG, w)
}

// renderDonut draws the ring slice by slice with the low level SVG renderer
// so every slice, a lone full ring included, uses its legend color and the
// hole matches the background.
func (r *SVGRenderer) renderDonut(w io.Writer, f *Figure) error {
	cv, err := chart.SVG(r.Width, r.Height)
	if err != nil {
		return fmt.Errorf("svg renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	cv.SetFillColor(colorBackground)
	cv.SetStrokeColor(colorBackground)
	cv.MoveTo(0, 0)
	cv.LineTo(r.Width, 0)
	cv.LineTo(r.Width, r.Height)
	cv.LineTo(0, r.Height)
	cv.Close()
	cv.Fill()

	cv.SetFont(font)
	cv.SetFontColor(colorForeground)
	cv.SetFontSize(14)
	tb := cv.MeasureText(f.Title)
	cv.Text(f.Title, (r.Width-tb.Width())/2, donutTitleHeight-12)

	cx, cy := r.Width/2, donutTitleHeight+(r.Height-donutTitleHeight)/2
	radius := 0.42 * float64(min(r.Width, r.Height-donutTitleHeight))
	total := float64(f.Count())

	type label struct {
		text  string
		angle float64
	}
	var labels []label
	if len(f.Slices) == 1 {
		cv.SetFillColor(drawing.ColorFromHex(groupHex(0)))
		cv.SetStrokeColor(colorBackground)
		cv.SetStrokeWidth(1)
		cv.Circle(radius, cx, cy)
		labels = append(labels, label{text: "100.0%", angle: -math.Pi / 2})
	} else {
		angle := -math.Pi / 2
		for i, s := range f.Slices {
			delta := 2 * math.Pi * float64(s.Count) / total
			cv.SetFillColor(drawing.ColorFromHex(groupHex(i)))
			cv.SetStrokeColor(colorBackground)
			cv.SetStrokeWidth(1)
			cv.MoveTo(cx, cy)
			cv.ArcTo(cx, cy, radius, radius, angle, delta)
			cv.LineTo(cx, cy)
			cv.Close()
			cv.FillStroke()
			if delta >= minLabelAngle {
				labels = append(labels, label{
					text:  fmt.Sprintf("%.1f%%", 100*float64(s.Count)/total),
					angle: angle + delta/2,
				})
			}
			angle += delta
		}
	}

	if f.Hole > 0 {
		cv.SetFillColor(colorBackground)
		cv.SetStrokeColor(colorBackground)
		cv.Circle(radius*f.Hole, cx, cy)
	}

	cv.SetFontSize(9)
	cv.SetFontColor(colorForeground)
	mid := radius * (1 + f.Hole) / 2
	for _, l := range labels {
		lb := cv.MeasureText(l.text)
		x := cx + int(mid*math.Cos(l.angle)) - lb.Width()/2
		y := cy + int(mid*math.Sin(l.angle)) + lb.Height()/2
		cv.Text(l.text, x, y)
	}
	return cv.Save(w)
}

// renderHistogram stacks groups by drawing cumulative step areas from the
// tallest stack down, so each group's band shows above the ones before it.
func (r *SVGRenderer) renderHistogram(w io.Writer, f *Figure) error {
	c := r.base(f.Title)
	maxTotal := 0
	for _, b := range f.Bins {
		maxTotal = max(maxTotal, b.Total())
	}
	c.XAxis = xAxis(f.X, &chart.ContinuousRange{Min: f.Bins[0].Lo, Max: f.Bins[len(f.Bins)-1].Hi})
	c.YAxis = yAxis(f.Y, &chart.ContinuousRange{Min: 0, Max: float64(maxTotal) * 1.05})

	cumulative := make([][]int, len(f.Groups))
	running := make([]int, len(f.Bins))
	for g := range f.Groups {
		cumulative[g] = make([]int, len(f.Bins))
		for i, b := range f.Bins {
			running[i] += b.Counts[g]
			cumulative[g][i] = running[i]
		}
	}
	for g := len(f.Groups) - 1; g >= 0; g-- {
		xs := make([]float64, 0, 2*len(f.Bins))
		ys := make([]float64, 0, 2*len(f.Bins))
		for i, b := range f.Bins {
			h := float64(cumulative[g][i])
			xs = append(xs, b.Lo, b.Hi)
			ys = append(ys, h, h)
		}
		color := drawing.ColorFromHex(groupHex(g))
		c.Series = append(c.Series, chart.ContinuousSeries{
			Name: f.Groups[g],
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 1,
				FillColor:   color.WithAlpha(180),
			},
			XValues: xs,
			YValues: ys,
		})
	}
	return c.Render(chart.SVG, w)
}

func (r *SVGRenderer) renderScatter(w io.Writer, f *Figure) error {
	c := r.base(f.Title)

	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	sizeMax := 0.0
	for _, s := range f.Series {
		for _, p := range s.Points {
			xlo, xhi = math.Min(xlo, p.X), math.Max(xhi, p.X)
			ylo, yhi = math.Min(ylo, p.Y), math.Max(yhi, p.Y)
			sizeMax = math.Max(sizeMax, p.Size)
		}
	}
	var xr, yr chart.Range = span(xlo, xhi), span(ylo, yhi)
	if f.X.Categorical() {
		xr = categoryRange(len(f.X.Categories))
	}
	if f.Y.Categorical() {
		yr = categoryRange(len(f.Y.Categories))
	}
	c.XAxis = xAxis(f.X, xr)
	c.YAxis = yAxis(f.Y, yr)

	for i, s := range f.Series {
		if len(s.Points) == 0 {
			continue
		}
		pts := s.Points
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for j, p := range pts {
			xs[j], ys[j] = p.X, p.Y
		}
		color := drawing.ColorFromHex(groupHex(i)).WithAlpha(200)
		style := chart.Style{
			StrokeWidth: chart.Disabled,
			StrokeColor: color,
			DotWidth:    minDot,
			DotColor:    color,
		}
		if f.SizeBy != "" && sizeMax > 0 {
			style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
				return dotSize(pts[index].Size, sizeMax)
			}
		}
		if f.Continuous != nil {
			scale := *f.Continuous
			style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				lo, hi := scale.Min, scale.Max
				if lo == hi {
					hi = lo + 1
				}
				return chart.Viridis(pts[index].Color, lo, hi)
			}
		}
		c.Series = append(c.Series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   style,
			XValues: xs,
			YValues: ys,
		})
	}
	return c.Render(chart.SVG, w)
}

// dotSize maps a value to a marker radius with area proportional to value.
func dotSize(v, vmax float64) float64 {
	if v <= 0 || vmax <= 0 {
		return minDot
	}
	return minDot + (maxDot-minDot)*math.Sqrt(v/vmax)
}
