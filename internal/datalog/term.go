package datalog

import "sort"

// Var is a logical variable used as a query argument. Identity, equality,
// and ordering are by name only: two Vars with the same name are
// interchangeable. A Var marks an argument position as a join/output column;
// any non-Var argument is treated as an opaque constant and bound as a SQL
// parameter.
type Var string

// String returns the variable's name.
func (v Var) String() string { return string(v) }

// Vars constructs a variable sequence from names, in order.
func Vars(names ...string) []Var {
	vs := make([]Var, len(names))
	for i, name := range names {
		vs[i] = Var(name)
	}
	return vs
}

// sortVars flattens a variable set into a slice sorted by name.
func sortVars(set map[Var]struct{}) []Var {
	out := make([]Var, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// unionVars returns the sorted union of two variable slices.
func unionVars(a, b []Var) []Var {
	set := make(map[Var]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	return sortVars(set)
}

// intersectVars returns the sorted intersection of two variable slices.
func intersectVars(a, b []Var) []Var {
	inA := make(map[Var]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	set := make(map[Var]struct{})
	for _, v := range b {
		if _, ok := inA[v]; ok {
			set[v] = struct{}{}
		}
	}
	return sortVars(set)
}

// containsVar reports whether v appears in vs.
func containsVar(vs []Var, v Var) bool {
	for _, w := range vs {
		if w == v {
			return true
		}
	}
	return false
}
