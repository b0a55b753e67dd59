package ui

import (
	"fmt"
	"strconv"

	"exodash/internal/domain"
	"exodash/internal/viz"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

var chartLabels = map[domain.ChartID]string{
	domain.ChartDistributionByMethod:    "Discovery method distribution",
	domain.ChartMassDistribution:        "Mass distribution",
	domain.ChartRadiusVsPeriod:          "Radius vs orbital period",
	domain.ChartTransitDepthVsDuration:  "Transit depth vs duration",
	domain.ChartTemperatureVsLuminosity: "Stellar temperature vs luminosity",
	domain.ChartCustomScatter:           "Custom scatter",
}

type dashboardPageData struct {
	State          dashboardState
	Methods        []string
	DistanceBounds domain.Range
	MassBounds     domain.Range
	Total          int
	View           *domain.Table
	Artifacts      []viz.Artifact
	Query          string
}

func dashboardPage(d dashboardPageData) Node {
	return appPage(
		"Exoplanet Data Dashboard",
		filterSidebar(d),
		rowCountCard(d),
		quickFilterCard("Filter by planet, host star or method", exportLinks(d.Query)...),
		planetTable(d.View),
		chartsSection(d.Artifacts),
	)
}

func filterSidebar(d dashboardPageData) Node {
	sel := d.State.Selection

	methodOptions := make([]Node, 0, len(d.Methods))
	for _, m := range d.Methods {
		methodOptions = append(methodOptions, optionChecked(m, sel.Methods.Has(m), m))
	}
	vizOptions := make([]Node, 0, len(chartLabels))
	for _, id := range domain.AllCharts() {
		vizOptions = append(vizOptions, optionChecked(string(id), d.State.Charts[id], chartLabels[id]))
	}

	return Form(
		Class("stack-form sidebar-form"),
		Method("get"),
		Action("/"),
		Input(Type("hidden"), Name("applied"), Value("1")),
		H2(Class("sidebar-heading"), Text("Filters")),
		Label(For("method"), Text("Discovery method")),
		Select(ID("method"), Name("method"), Multiple(), Class("form-select"), Attr("size", strconv.Itoa(min(len(d.Methods), 8))), Group(methodOptions)),
		rangeInputs("Distance (pc)", "dist", sel.Distance, d.DistanceBounds),
		rangeInputs("Mass (Earth masses)", "mass", sel.Mass, d.MassBounds),
		H2(Class("sidebar-heading"), Text("Visualizations")),
		Select(ID("viz"), Name("viz"), Multiple(), Class("form-select"), Attr("size", strconv.Itoa(len(vizOptions))), Group(vizOptions)),
		H2(Class("sidebar-heading"), Text("Custom scatter")),
		columnSelect("x", "X axis", d.State.Custom.X),
		columnSelect("y", "Y axis", d.State.Custom.Y),
		columnSelect("color", "Color by", d.State.Custom.Color),
		Div(
			Class("form-actions"),
			Button(Type("submit"), Class(primaryButtonClass()), Text("Apply")),
			A(Href("/"), Class(secondaryButtonClass()), Text("Reset")),
		),
	)
}

func rangeInputs(label, prefix string, value, bounds domain.Range) Node {
	input := func(suffix string, v float64) Node {
		return Input(
			Type("number"),
			ID(prefix+"_"+suffix),
			Name(prefix+"_"+suffix),
			Class("form-control"),
			Value(formatNumber(v)),
			Step("any"),
			Min(formatNumber(bounds.Min)),
			Max(formatNumber(bounds.Max)),
		)
	}
	return Div(
		Class("range-field"),
		Label(For(prefix+"_min"), Text(label)),
		Div(Class("d-flex gap-2"), input("min", value.Min), input("max", value.Max)),
		P(Class(mutedClass()), Text(fmt.Sprintf("Catalog range %s to %s", formatNumber(bounds.Min), formatNumber(bounds.Max)))),
	)
}

func columnSelect(name, label string, selected domain.Column) Node {
	options := make([]Node, 0, len(domain.AllColumns()))
	for _, c := range domain.AllColumns() {
		options = append(options, optionSelectedValue(c.Name(), selected.Name(), c.Name()))
	}
	return Div(
		Label(For(name), Text(label)),
		Select(ID(name), Name(name), Class("form-select"), Group(options)),
	)
}

func rowCountCard(d dashboardPageData) Node {
	return Div(
		Class(cardClass("row-count")),
		Strong(Text(fmt.Sprintf("Number of exoplanets after filtering: %d", d.View.Len()))),
		Span(Class(mutedClass()), Text(fmt.Sprintf(" of %d in the catalog", d.Total))),
	)
}

func exportLinks(query string) []Node {
	suffix := ""
	if query != "" {
		suffix = "?" + query
	}
	return []Node{
		A(Href("/download.csv"+suffix), Class(secondaryButtonClass()), Text("Download CSV")),
		A(Href("/api/planets"+suffix), Class(secondaryButtonClass()), Text("JSON")),
	}
}

func planetTable(view *domain.Table) Node {
	if view.Len() == 0 {
		return emptyStateCard("No exoplanets match the current filters.")
	}

	head := make([]Node, len(view.Columns))
	for i, c := range view.Columns {
		head[i] = Th(Attr("title", c.Label()), Text(c.Name()))
	}

	rows := view.Rows
	if len(rows) > dashboardTableLimit {
		rows = rows[:dashboardTableLimit]
	}
	body := make([]Node, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		cells := make([]Node, len(view.Columns))
		for j, c := range view.Columns {
			cells[j] = Td(Text(cellText(r.Value(c))))
		}
		body = append(body, Tr(data.Show(containsExpr(r.PlanetName+" "+r.HostName+" "+r.DiscoveryMethod)), Group(cells)))
	}

	var note Node
	if view.Len() > len(rows) {
		note = P(Class(mutedClass()), Text(fmt.Sprintf("Showing the first %d rows. Download the CSV for all %d.", len(rows), view.Len())))
	}
	return Div(
		Class(cardClass("table-wrap")),
		Table(Class("data-table"), THead(Tr(Group(head))), TBody(Group(body))),
		note,
	)
}

func chartsSection(artifacts []viz.Artifact) Node {
	if len(artifacts) == 0 {
		return emptyStateCard("No visualizations selected.")
	}
	cards := make([]Node, 0, len(artifacts))
	for _, a := range artifacts {
		cards = append(cards, chartCard(a))
	}
	return Div(Class("chart-grid"), Group(cards))
}

func chartCard(a viz.Artifact) Node {
	label := chartLabels[a.ID]
	if a.Err != nil {
		return Div(
			Class(cardClass("chart-card")),
			H3(Text(label)),
			P(Class("flash flash-error"), Text(a.Err.Error())),
		)
	}

	legend := make([]Node, 0, len(a.Legend))
	for _, e := range a.Legend {
		legend = append(legend, Li(
			Span(Class("legend-swatch"), Style("background-color: "+e.Color)),
			Text(e.Label),
		))
	}
	return Div(
		Class(cardClass("chart-card")),
		ID("chart-"+string(a.ID)),
		H3(Text(label)),
		Div(Class("chart-svg"), Raw(string(a.SVG))),
		If(len(legend) > 0, Ul(Class("chart-legend"), Group(legend))),
	)
}

func cellText(v domain.Value) string {
	if v.Null {
		return "-"
	}
	if v.Kind == domain.KindNumber {
		return formatNumber(v.Number)
	}
	return v.Text
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
