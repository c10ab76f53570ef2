package datalog

// Plan is a compiled SQL fragment: statement text with positional
// placeholders plus the constant values to bind to them, in left-to-right,
// depth-first order of the tree that produced it. Plans are immutable; the
// same Plan may be submitted for execution any number of times.
type Plan struct {
	Text   string
	Params []any
}

// Query is an algebraic expression over relations and variables.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and keeps the
// algebra closed over exactly three variants:
//   - Single: one relation invocation with variable/constant arguments
//   - And: conjunction (natural join on shared variables)
//   - Or: disjunction (union over the common variable set)
//
// A node's output-variable set and compiled plan are pure functions of its
// children, computed at most once and cached for the node's lifetime.
type Query interface {
	// Cols returns the node's output variables, sorted by name.
	Cols() []Var

	// Plan returns the node's compiled SQL.
	Plan() Plan

	queryNode() // Marker method - seals interface to this package
}
