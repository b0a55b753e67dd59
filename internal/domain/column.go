// Package domain defines the exoplanet catalog types shared by the fetcher,
// filter engine, chart recipes and presentation layers.
package domain

import "strings"

// Kind is the storage type of a catalog column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "text"
}

// Column identifies one field of the Planetary Systems table.
type Column int

const (
	PlanetName Column = iota
	HostName
	DiscoveryMethod
	Distance
	Mass
	Radius
	OrbitalPeriod
	TransitDepth
	TransitDuration
	StellarTemperature
	StellarLuminosity
	StellarRadius
	GaiaMagnitude

	numColumns
)

type columnInfo struct {
	name  string
	label string
	kind  Kind
}

var columns = [numColumns]columnInfo{
	PlanetName:         {name: "pl_name", label: "Planet Name", kind: KindText},
	HostName:           {name: "hostname", label: "Host Star Name", kind: KindText},
	DiscoveryMethod:    {name: "discoverymethod", label: "Discovery Method", kind: KindText},
	Distance:           {name: "sy_dist", label: "Distance (pc)", kind: KindNumber},
	Mass:               {name: "pl_bmasse", label: "Mass (Earth Masses)", kind: KindNumber},
	Radius:             {name: "pl_rade", label: "Radius (Earth Radii)", kind: KindNumber},
	OrbitalPeriod:      {name: "pl_orbper", label: "Orbital Period (days)", kind: KindNumber},
	TransitDepth:       {name: "pl_trandep", label: "Transit Depth", kind: KindNumber},
	TransitDuration:    {name: "pl_trandur", label: "Transit Duration (hours)", kind: KindNumber},
	StellarTemperature: {name: "st_teff", label: "Stellar Temperature (K)", kind: KindNumber},
	StellarLuminosity:  {name: "st_lum", label: "Stellar Luminosity (log L☉)", kind: KindNumber},
	StellarRadius:      {name: "st_rad", label: "Stellar Radius (R☉)", kind: KindNumber},
	GaiaMagnitude:      {name: "sy_gaiamag", label: "Gaia Magnitude", kind: KindNumber},
}

var columnsByName = func() map[string]Column {
	m := make(map[string]Column, numColumns)
	for i := range columns {
		m[columns[i].name] = Column(i)
	}
	return m
}()

// AllColumns returns every catalog column in archive select order.
func AllColumns() []Column {
	out := make([]Column, numColumns)
	for i := range out {
		out[i] = Column(i)
	}
	return out
}

// ColumnByName resolves an archive column name such as "pl_bmasse".
func ColumnByName(name string) (Column, error) {
	c, ok := columnsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, ErrValidation("unknown column %q", name)
	}
	return c, nil
}

// Valid reports whether c is one of the enumerated columns.
func (c Column) Valid() bool { return c >= 0 && c < numColumns }

// Name returns the archive column name.
func (c Column) Name() string {
	if !c.Valid() {
		return ""
	}
	return columns[c].name
}

// Label returns a human readable label including the unit.
func (c Column) Label() string {
	if !c.Valid() {
		return ""
	}
	return columns[c].label
}

// Kind returns whether the column holds text or numbers.
func (c Column) Kind() Kind {
	if !c.Valid() {
		return KindText
	}
	return columns[c].kind
}

func (c Column) String() string { return c.Name() }
