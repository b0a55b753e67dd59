package viz

import (
	"fmt"
	"math"

	"exodash/internal/domain"
)

// HistogramBins is the number of equal-width mass buckets.
const HistogramBins = 30

type recipe func(view *domain.Table, custom domain.CustomScatter) (*Figure, error)

var recipes = map[domain.ChartID]recipe{
	domain.ChartDistributionByMethod: func(view *domain.Table, _ domain.CustomScatter) (*Figure, error) {
		return methodDonut(view), nil
	},
	domain.ChartMassDistribution: func(view *domain.Table, _ domain.CustomScatter) (*Figure, error) {
		return massHistogram(view, HistogramBins), nil
	},
	domain.ChartRadiusVsPeriod: func(view *domain.Table, _ domain.CustomScatter) (*Figure, error) {
		return scatter(view, scatterSpec{
			id:    domain.ChartRadiusVsPeriod,
			title: "Radius vs Orbital Period",
			x:     domain.OrbitalPeriod,
			y:     domain.Radius,
			color: domain.DiscoveryMethod,
			size:  domain.Mass,
			sized: true,
		})
	},
	domain.ChartTransitDepthVsDuration: func(view *domain.Table, _ domain.CustomScatter) (*Figure, error) {
		return scatter(view, scatterSpec{
			id:    domain.ChartTransitDepthVsDuration,
			title: "Transit Depth vs Duration",
			x:     domain.TransitDepth,
			y:     domain.TransitDuration,
			color: domain.DiscoveryMethod,
			size:  domain.Mass,
			sized: true,
		})
	},
	domain.ChartTemperatureVsLuminosity: func(view *domain.Table, _ domain.CustomScatter) (*Figure, error) {
		return scatter(view, scatterSpec{
			id:    domain.ChartTemperatureVsLuminosity,
			title: "Stellar Temperature vs Luminosity",
			x:     domain.StellarTemperature,
			y:     domain.StellarLuminosity,
			color: domain.DiscoveryMethod,
		})
	},
	domain.ChartCustomScatter: func(view *domain.Table, custom domain.CustomScatter) (*Figure, error) {
		for _, c := range []domain.Column{custom.X, custom.Y, custom.Color} {
			if !c.Valid() || !view.HasColumn(c) {
				return nil, domain.ErrValidation("column %q is not available", c.Name())
			}
		}
		return scatter(view, scatterSpec{
			id:    domain.ChartCustomScatter,
			title: fmt.Sprintf("%s vs %s", custom.X.Name(), custom.Y.Name()),
			x:     custom.X,
			y:     custom.Y,
			color: custom.Color,
			raw:   true,
		})
	},
}

// Build runs the recipe for id against view.
func Build(id domain.ChartID, view *domain.Table, custom domain.CustomScatter) (*Figure, error) {
	r, ok := recipes[id]
	if !ok {
		return nil, domain.ErrValidation("unknown chart %q", string(id))
	}
	return r(view, custom)
}

func methodDonut(view *domain.Table) *Figure {
	f := &Figure{
		ID:    domain.ChartDistributionByMethod,
		Title: "Exoplanet Distribution",
		Kind:  KindDonut,
		Hole:  0.5,
	}
	idx := map[string]int{}
	for i := range view.Rows {
		m := view.Rows[i].DiscoveryMethod
		if m == "" {
			continue
		}
		j, ok := idx[m]
		if !ok {
			j = len(f.Slices)
			idx[m] = j
			f.Slices = append(f.Slices, Slice{Label: m})
		}
		f.Slices[j].Count++
	}
	return f
}

func massHistogram(view *domain.Table, bins int) *Figure {
	f := &Figure{
		ID:    domain.ChartMassDistribution,
		Title: "Mass Distribution",
		Kind:  KindHistogram,
		X:     Axis{Label: domain.Mass.Label()},
		Y:     Axis{Label: "count"},
	}

	type sample struct {
		v     float64
		group int
	}
	groups := map[string]int{}
	var samples []sample
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range view.Rows {
		r := &view.Rows[i]
		v, ok := r.Number(domain.Mass)
		if !ok || r.DiscoveryMethod == "" {
			continue
		}
		g, seen := groups[r.DiscoveryMethod]
		if !seen {
			g = len(f.Groups)
			groups[r.DiscoveryMethod] = g
			f.Groups = append(f.Groups, r.DiscoveryMethod)
		}
		samples = append(samples, sample{v: v, group: g})
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if len(samples) == 0 {
		return f
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)
	f.Bins = make([]Bin, bins)
	for i := range f.Bins {
		f.Bins[i] = Bin{
			Lo:     lo + float64(i)*width,
			Hi:     lo + float64(i+1)*width,
			Counts: make([]int, len(f.Groups)),
		}
	}
	f.Bins[bins-1].Hi = hi
	for _, s := range samples {
		i := int((s.v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		f.Bins[i].Counts[s.group]++
	}
	return f
}

type scatterSpec struct {
	id    domain.ChartID
	title string
	x     domain.Column
	y     domain.Column
	color domain.Column
	size  domain.Column
	sized bool
	// raw uses column names instead of labels on the axes.
	raw bool
}

func (s scatterSpec) label(c domain.Column) string {
	if s.raw {
		return c.Name()
	}
	return c.Label()
}

// categories assigns first-seen indexes to text values.
type categories struct {
	index  map[string]int
	values []string
}

func newCategories() *categories {
	return &categories{index: map[string]int{}, values: []string{}}
}

func (c *categories) of(v string) int {
	if i, ok := c.index[v]; ok {
		return i
	}
	i := len(c.values)
	c.index[v] = i
	c.values = append(c.values, v)
	return i
}

func coordinate(v domain.Value, cats *categories) float64 {
	if cats != nil {
		return float64(cats.of(v.Text))
	}
	return v.Number
}

// scatter drops rows whose x, y, color or size cell is null.
func scatter(view *domain.Table, spec scatterSpec) (*Figure, error) {
	f := &Figure{
		ID:      spec.id,
		Title:   spec.title,
		Kind:    KindScatter,
		X:       Axis{Label: spec.label(spec.x)},
		Y:       Axis{Label: spec.label(spec.y)},
		ColorBy: spec.label(spec.color),
	}
	if spec.sized {
		f.SizeBy = spec.size.Label()
	}

	var xCats, yCats *categories
	if spec.x.Kind() == domain.KindText {
		xCats = newCategories()
	}
	if spec.y.Kind() == domain.KindText {
		yCats = newCategories()
	}
	continuous := spec.color.Kind() == domain.KindNumber
	if continuous {
		f.Series = []Series{{Name: f.ColorBy}}
		f.Continuous = &ColorScale{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	groups := map[string]int{}

	for i := range view.Rows {
		r := &view.Rows[i]
		xv, yv, cv := r.Value(spec.x), r.Value(spec.y), r.Value(spec.color)
		if xv.Null || yv.Null || cv.Null {
			continue
		}
		p := Point{X: coordinate(xv, xCats), Y: coordinate(yv, yCats)}
		if spec.sized {
			sz, ok := r.Number(spec.size)
			if !ok {
				continue
			}
			p.Size = sz
		}
		if continuous {
			p.Color = cv.Number
			f.Continuous.Min = math.Min(f.Continuous.Min, cv.Number)
			f.Continuous.Max = math.Max(f.Continuous.Max, cv.Number)
			f.Series[0].Points = append(f.Series[0].Points, p)
			continue
		}
		g, ok := groups[cv.Text]
		if !ok {
			g = len(f.Series)
			groups[cv.Text] = g
			f.Series = append(f.Series, Series{Name: cv.Text})
		}
		f.Series[g].Points = append(f.Series[g].Points, p)
	}

	if xCats != nil {
		f.X.Categories = xCats.values
	}
	if yCats != nil {
		f.Y.Categories = yCats.values
	}
	if continuous && len(f.Series[0].Points) == 0 {
		f.Series = nil
		f.Continuous = nil
	}
	return f, nil
}
