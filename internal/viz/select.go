package viz

import (
	"bytes"
	"log/slog"

	"exodash/internal/domain"
)

// Artifact is one rendered chart. Err is set when the chart could not be
// built; other charts of the same selection are unaffected.
type Artifact struct {
	ID     domain.ChartID
	Title  string
	SVG    []byte
	Legend []LegendEntry
	Points int
	Err    error
}

// Selector maps chosen chart identifiers to rendered artifacts.
type Selector struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewSelector creates a Selector. A nil renderer uses NewSVGRenderer.
func NewSelector(renderer Renderer, logger *slog.Logger) *Selector {
	if renderer == nil {
		renderer = NewSVGRenderer()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Selector{renderer: renderer, logger: logger}
}

// Select renders every chart in chosen, in display order.
func (s *Selector) Select(view *domain.Table, chosen map[domain.ChartID]bool, custom domain.CustomScatter) []Artifact {
	var out []Artifact
	for _, id := range domain.AllCharts() {
		if !chosen[id] {
			continue
		}
		out = append(out, s.Chart(view, id, custom))
	}
	return out
}

// Chart renders a single chart.
func (s *Selector) Chart(view *domain.Table, id domain.ChartID, custom domain.CustomScatter) Artifact {
	a := Artifact{ID: id, Title: string(id)}
	fig, err := Build(id, view, custom)
	if err != nil {
		a.Err = err
		return a
	}
	a.Title = fig.Title
	a.Legend = fig.Legend()
	a.Points = fig.Count()

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, fig); err != nil {
		s.logger.Warn("chart render failed", "chart", id, "error", err)
		a.Err = err
		return a
	}
	a.SVG = buf.Bytes()
	return a
}
