package domain

import (
	"database/sql"
	"strconv"
)

// Value is a single typed cell. Null is set for missing numbers and empty text.
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Null   bool
}

// TextValue returns a text cell; the empty string is null.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s, Null: s == ""}
}

// NumberValue returns a non-null numeric cell.
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// NullNumber returns a null numeric cell.
func NullNumber() Value {
	return Value{Kind: KindNumber, Null: true}
}

// String formats the cell for tables and CSV output. Nulls format as "".
func (v Value) String() string {
	if v.Null {
		return ""
	}
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	}
	return v.Text
}

// Interface returns the cell as a JSON friendly value (nil, string or float64).
func (v Value) Interface() any {
	if v.Null {
		return nil
	}
	if v.Kind == KindNumber {
		return v.Number
	}
	return v.Text
}

// Record is one row of the Planetary Systems table.
type Record struct {
	PlanetName      string
	HostName        string
	DiscoveryMethod string

	Distance           sql.NullFloat64
	Mass               sql.NullFloat64
	Radius             sql.NullFloat64
	OrbitalPeriod      sql.NullFloat64
	TransitDepth       sql.NullFloat64
	TransitDuration    sql.NullFloat64
	StellarTemperature sql.NullFloat64
	StellarLuminosity  sql.NullFloat64
	StellarRadius      sql.NullFloat64
	GaiaMagnitude      sql.NullFloat64
}

func (r *Record) text(c Column) *string {
	switch c {
	case PlanetName:
		return &r.PlanetName
	case HostName:
		return &r.HostName
	case DiscoveryMethod:
		return &r.DiscoveryMethod
	}
	return nil
}

func (r *Record) number(c Column) *sql.NullFloat64 {
	switch c {
	case Distance:
		return &r.Distance
	case Mass:
		return &r.Mass
	case Radius:
		return &r.Radius
	case OrbitalPeriod:
		return &r.OrbitalPeriod
	case TransitDepth:
		return &r.TransitDepth
	case TransitDuration:
		return &r.TransitDuration
	case StellarTemperature:
		return &r.StellarTemperature
	case StellarLuminosity:
		return &r.StellarLuminosity
	case StellarRadius:
		return &r.StellarRadius
	case GaiaMagnitude:
		return &r.GaiaMagnitude
	}
	return nil
}

// Value returns the cell for column c.
func (r *Record) Value(c Column) Value {
	if c.Kind() == KindText {
		if p := r.text(c); p != nil {
			return TextValue(*p)
		}
		return TextValue("")
	}
	if p := r.number(c); p != nil && p.Valid {
		return NumberValue(p.Float64)
	}
	return NullNumber()
}

// Number returns the numeric value of column c and whether it is non-null.
// Text columns always report false.
func (r *Record) Number(c Column) (float64, bool) {
	p := r.number(c)
	if p == nil || !p.Valid {
		return 0, false
	}
	return p.Float64, true
}

// Set assigns column c. It is used by decoders while a table is being built.
func (r *Record) Set(c Column, v Value) {
	if c.Kind() == KindText {
		if p := r.text(c); p != nil {
			*p = v.Text
		}
		return
	}
	if p := r.number(c); p != nil {
		*p = sql.NullFloat64{Float64: v.Number, Valid: !v.Null}
	}
}
