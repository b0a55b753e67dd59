package domain

import "strings"

// ChartID names one of the fixed chart recipes.
type ChartID string

const (
	ChartDistributionByMethod    ChartID = "distribution-by-method"
	ChartMassDistribution        ChartID = "mass-distribution"
	ChartRadiusVsPeriod          ChartID = "radius-vs-period"
	ChartTransitDepthVsDuration  ChartID = "transit-depth-vs-duration"
	ChartTemperatureVsLuminosity ChartID = "temperature-vs-luminosity"
	ChartCustomScatter           ChartID = "custom-scatter"
)

// AllCharts lists every chart in display order.
func AllCharts() []ChartID {
	return []ChartID{
		ChartDistributionByMethod,
		ChartMassDistribution,
		ChartRadiusVsPeriod,
		ChartTransitDepthVsDuration,
		ChartTemperatureVsLuminosity,
		ChartCustomScatter,
	}
}

// Valid reports whether id is a known chart.
func (id ChartID) Valid() bool {
	for _, c := range AllCharts() {
		if c == id {
			return true
		}
	}
	return false
}

// ParseChartIDs converts raw identifiers into a chart set. Unknown
// identifiers are dropped.
func ParseChartIDs(raw []string) map[ChartID]bool {
	out := make(map[ChartID]bool, len(raw))
	for _, r := range raw {
		id := ChartID(strings.TrimSpace(r))
		if id.Valid() {
			out[id] = true
		}
	}
	return out
}

// CustomScatter holds the user-chosen columns of the custom scatter chart.
type CustomScatter struct {
	X     Column
	Y     Column
	Color Column
}

// DefaultCustomScatter is mass vs radius colored by discovery method.
func DefaultCustomScatter() CustomScatter {
	return CustomScatter{X: Mass, Y: Radius, Color: DiscoveryMethod}
}
