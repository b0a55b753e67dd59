// Package filter selects the rows of a catalog table that match a
// user-chosen discovery-method set and distance and mass ranges.
package filter

import (
	"math"

	"exodash/internal/domain"
)

// Default slider positions used before the user touches the controls.
var (
	DefaultDistance = domain.Range{Min: 10, Max: 500}
	DefaultMass     = domain.Range{Min: 0, Max: 50}
)

// Apply returns the rows of t whose discovery method is in sel.Methods and
// whose distance and mass lie inside the inclusive ranges. Rows with a null
// method, distance or mass never match. t is not modified.
func Apply(t *domain.Table, sel domain.Selection) *domain.Table {
	return t.Subset(func(r *domain.Record) bool {
		return Match(r, sel)
	})
}

// Match reports whether a single record satisfies sel.
func Match(r *domain.Record, sel domain.Selection) bool {
	if r.DiscoveryMethod == "" || !sel.Methods.Has(r.DiscoveryMethod) {
		return false
	}
	dist, ok := r.Number(domain.Distance)
	if !ok || !sel.Distance.Contains(dist) {
		return false
	}
	mass, ok := r.Number(domain.Mass)
	if !ok || !sel.Mass.Contains(mass) {
		return false
	}
	return true
}

// Methods returns the distinct non-empty discovery methods in first-seen order.
func Methods(t *domain.Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range t.Rows {
		m := t.Rows[i].DiscoveryMethod
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Bounds returns the minimum and maximum non-null value of a numeric column.
// ok is false when the column has no values.
func Bounds(t *domain.Table, c domain.Column) (r domain.Range, ok bool) {
	r = domain.Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := range t.Rows {
		v, valid := t.Rows[i].Number(c)
		if !valid {
			continue
		}
		ok = true
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	if !ok {
		return domain.Range{}, false
	}
	return r, true
}

// DefaultSelection selects every discovery method present in t together
// with the default distance and mass ranges.
func DefaultSelection(t *domain.Table) domain.Selection {
	return domain.Selection{
		Methods:  domain.NewMethodSet(Methods(t)...),
		Distance: DefaultDistance,
		Mass:     DefaultMass,
	}
}
