// Package datalog implements the deductive query algebra and its SQL compiler.
//
// Callers declare relations (named, typed column lists with set or bag
// duplicate policy), invoke them with variables and constants to form Single
// queries, and combine those with NewAnd (natural join) and NewOr (union)
// into arbitrarily nested trees. Every node compiles to a parameterized SQL
// fragment; Rule compiles a fully-variable head against a body into an
// insert-from-select materialization statement.
//
// ARCHITECTURE:
//
// The package is the pure core of the system: it never touches a database,
// never inspects data, and performs no I/O. It manipulates schema metadata
// and produces Plan values (SQL text plus ordered bound parameters) that the
// store executes.
//
//	Relation ──invoke──▶ Single ──NewAnd/NewOr──▶ Query tree ──Plan()──▶ store
//	                        └───────────Rule(head, body)──────────────▶ store
//
// Query is a sealed interface over exactly Single, And, and Or. The algebra
// is closed: backends may type-switch exhaustively, and no external package
// can add variants.
//
// DETERMINISM:
//
// All derived column orderings (projections, join conditions, union
// re-selection) use the variables' name order, so the same tree always
// compiles to byte-identical text. Constants are always bound as positional
// parameters, never interpolated; only validated identifiers reach the SQL
// text.
//
// IMMUTABILITY:
//
// Relations and query nodes are immutable after construction. A node's
// output-variable set and compiled plan are computed at most once and cached
// for the node's lifetime; resubmitting the same node any number of times
// re-runs the same compiled text against current relation contents.
//
// FIXPOINT EVALUATION:
//
// The package provides no convergence detection. Recursive rules reach a
// fixpoint by repeated resubmission of the same compiled statement; for
// set-typed head relations the duplicate-suppressing insert makes
// resubmission idempotent once the fixpoint is reached. Driving that loop is
// the caller's job (see internal/engine).
package datalog
