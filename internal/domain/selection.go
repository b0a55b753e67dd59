package domain

import "sort"

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// MethodSet is a set of discovery method names.
type MethodSet map[string]struct{}

// NewMethodSet builds a set from names.
func NewMethodSet(names ...string) MethodSet {
	s := make(MethodSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s MethodSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s MethodSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Selection holds the user-chosen filter predicates.
type Selection struct {
	Methods  MethodSet
	Distance Range
	Mass     Range
}
