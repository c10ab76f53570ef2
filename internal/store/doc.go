// Package store provides the SQLite execution engine behind the query
// compiler.
//
// The store owns everything that touches a database: relation table
// creation, bulk fact insertion, execution of compiled plans (reads and
// rule-application writes), transactional scoping, schema introspection, and
// run provenance. The compiler side (internal/datalog) hands it finished SQL
// text with bound parameters and never opens a connection itself.
//
// Storage failures are wrapped with operation context (%w) and otherwise
// propagated unchanged; the store never reinterprets an engine error.
//
// # Transactions
//
// WithTx is the unit-of-work boundary: it begins a transaction, runs the
// caller's function against a *Tx exposing the same operations, commits on a
// nil return, and rolls back (and propagates the failure) on error or panic.
// Rule application and fact loading for one run happen inside a single
// WithTx so a failed run leaves previously committed state untouched.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - single connection: SQLite has one writer; avoids SQLITE_BUSY
//
// Relation tables are created on demand from compiled DDL; the embedded
// schema (schema.sql, versioned via PRAGMA user_version) holds only the
// datalite_runs provenance table. Introspection treats every other
// non-internal table as a candidate relation.
package store
