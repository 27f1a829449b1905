package types

import "sort"

// ColumnSet is an unordered set of column names.
type ColumnSet map[string]struct{}

func NewColumnSet(names ...string) ColumnSet {
	s := make(ColumnSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s ColumnSet) Add(name string) {
	s[name] = struct{}{}
}

func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s ColumnSet) Len() int {
	return len(s)
}

// Sorted returns the names in lexical order. Output and logs use it so that
// results are stable across runs.
func (s ColumnSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the names present in both sets, walking the smaller one.
func (s ColumnSet) Intersect(other ColumnSet) ColumnSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := ColumnSet{}
	for n := range small {
		if large.Has(n) {
			out.Add(n)
		}
	}
	return out
}
