package ui

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"exodash/internal/domain"
	"exodash/internal/filter"
)

// dashboardState is everything a request selects: filters, charts and the
// custom scatter columns.
type dashboardState struct {
	Selection domain.Selection
	Charts    map[domain.ChartID]bool
	Custom    domain.CustomScatter
}

func formString(values url.Values, key string) string {
	if values == nil {
		return ""
	}
	return strings.TrimSpace(values.Get(key))
}

func formValues(values url.Values, key string) []string {
	out := make([]string, 0, len(values[key]))
	for _, v := range values[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func formFloat(values url.Values, key string, fallback float64) (float64, error) {
	v := formString(values, key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, domain.ErrValidation("%s must be a number, got %q", key, v)
	}
	return f, nil
}

func formColumn(values url.Values, key string, fallback domain.Column) (domain.Column, error) {
	v := formString(values, key)
	if v == "" {
		return fallback, nil
	}
	return domain.ColumnByName(v)
}

// parseDashboardQuery reads the dashboard controls. Missing controls take the
// defaults derived from catalog; when applied=1 an empty multi-select means
// nothing is selected.
func parseDashboardQuery(values url.Values, catalog *domain.Table) (dashboardState, error) {
	defaults := filter.DefaultSelection(catalog)
	applied := formString(values, "applied") == "1"
	state := dashboardState{Selection: defaults}

	if _, ok := values["method"]; ok || applied {
		state.Selection.Methods = domain.NewMethodSet(formValues(values, "method")...)
	}

	var err error
	ranges := []struct {
		key string
		dst *float64
	}{
		{"dist_min", &state.Selection.Distance.Min},
		{"dist_max", &state.Selection.Distance.Max},
		{"mass_min", &state.Selection.Mass.Min},
		{"mass_max", &state.Selection.Mass.Max},
	}
	for _, rg := range ranges {
		if *rg.dst, err = formFloat(values, rg.key, *rg.dst); err != nil {
			return dashboardState{}, err
		}
	}

	if _, ok := values["viz"]; ok || applied {
		state.Charts = domain.ParseChartIDs(formValues(values, "viz"))
	} else {
		state.Charts = make(map[domain.ChartID]bool)
		for _, id := range domain.AllCharts() {
			state.Charts[id] = true
		}
	}

	custom := domain.DefaultCustomScatter()
	if custom.X, err = formColumn(values, "x", custom.X); err != nil {
		return dashboardState{}, err
	}
	if custom.Y, err = formColumn(values, "y", custom.Y); err != nil {
		return dashboardState{}, err
	}
	if custom.Color, err = formColumn(values, "color", custom.Color); err != nil {
		return dashboardState{}, err
	}
	state.Custom = custom
	return state, nil
}
