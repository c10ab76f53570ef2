package datalog

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern restricts relation and column names to plain SQL identifiers.
// Names are interpolated into statement text (values never are), so anything
// outside this pattern is rejected at construction.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether s is acceptable as a relation or column name.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Column is one (name, type) entry of a relation schema. Type is a SQL
// column type such as "INTEGER" or "TEXT".
type Column struct {
	Name string
	Type string
}

// Relation is a named, ordered, typed tuple schema. A distinct relation has
// set semantics: its full column list forms a composite primary key and
// duplicate-tuple inserts are silently suppressed. A non-distinct relation
// has bag semantics with no uniqueness constraint.
//
// Relations are immutable once constructed. The two derived statements
// (table creation, row insertion) are computed at construction and never
// change.
type Relation struct {
	name     string
	columns  []Column
	distinct bool

	createSQL string
	insertSQL string
}

// NewRelation defines a bag-semantics relation.
//
// Panics if the name or any column name is not a plain identifier, if no
// columns are given, or if a column name repeats. Callers constructing
// relations from user input must validate first (see internal/program).
func NewRelation(name string, cols ...Column) *Relation {
	return newRelation(name, cols, false)
}

// NewRelationSet defines a set-semantics relation: all columns form a
// composite primary key and duplicate inserts are dropped, never erroring.
// Panics under the same conditions as NewRelation.
func NewRelationSet(name string, cols ...Column) *Relation {
	return newRelation(name, cols, true)
}

func newRelation(name string, cols []Column, distinct bool) *Relation {
	if !identPattern.MatchString(name) {
		panic(fmt.Sprintf("datalog: invalid relation name %q", name))
	}
	if len(cols) == 0 {
		panic(fmt.Sprintf("datalog: relation %q has no columns", name))
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if !identPattern.MatchString(c.Name) {
			panic(fmt.Sprintf("datalog: relation %q: invalid column name %q", name, c.Name))
		}
		if _, dup := seen[c.Name]; dup {
			panic(fmt.Sprintf("datalog: relation %q: duplicate column %q", name, c.Name))
		}
		seen[c.Name] = struct{}{}
	}

	r := &Relation{
		name:     name,
		columns:  append([]Column(nil), cols...),
		distinct: distinct,
	}
	r.createSQL = r.buildCreateSQL()
	r.insertSQL = r.buildInsertSQL()
	return r
}

// Name returns the relation's table name.
func (r *Relation) Name() string { return r.name }

// Columns returns the relation's schema in declared order.
func (r *Relation) Columns() []Column {
	return append([]Column(nil), r.columns...)
}

// Arity returns the number of columns.
func (r *Relation) Arity() int { return len(r.columns) }

// Distinct reports whether the relation has set semantics.
func (r *Relation) Distinct() bool { return r.distinct }

// CreateSQL returns the idempotent table-creation statement.
func (r *Relation) CreateSQL() string { return r.createSQL }

// InsertSQL returns the single-row insertion statement, one placeholder per
// column in declared order. For distinct relations the statement suppresses
// duplicate tuples.
func (r *Relation) InsertSQL() string { return r.insertSQL }

func (r *Relation) buildCreateSQL() string {
	defs := make([]string, 0, len(r.columns)+1)
	for _, c := range r.columns {
		defs = append(defs, fmt.Sprintf("%s %s", c.Name, c.Type))
	}
	if r.distinct {
		names := make([]string, len(r.columns))
		for i, c := range r.columns {
			names[i] = c.Name
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(names, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", r.name, strings.Join(defs, ", "))
}

func (r *Relation) buildInsertSQL() string {
	names := make([]string, len(r.columns))
	marks := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.Name
		marks[i] = "?"
	}
	text := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.name, strings.Join(names, ", "), strings.Join(marks, ", "))
	if r.distinct {
		text += " ON CONFLICT DO NOTHING"
	}
	return text
}

// Query invokes the relation as a query constructor: one argument per
// column, each either a Var or a constant. Repeating a Var across positions
// requires the matched tuple to agree on those columns (unification).
//
// Panics if the argument count does not match the relation's column count;
// arity is a precondition, never deferred to compilation.
func (r *Relation) Query(args ...any) *Single {
	if len(args) != len(r.columns) {
		panic(fmt.Sprintf("datalog: relation %q expects %d arguments, got %d",
			r.name, len(r.columns), len(args)))
	}
	return &Single{rel: r, values: append([]any(nil), args...)}
}

// QueryNamed invokes the relation with arguments keyed by column name.
// Every column must be present and no extra keys are allowed; violations
// panic, matching Query's arity contract.
func (r *Relation) QueryNamed(args map[string]any) *Single {
	if len(args) != len(r.columns) {
		panic(fmt.Sprintf("datalog: relation %q expects %d named arguments, got %d",
			r.name, len(r.columns), len(args)))
	}
	values := make([]any, len(r.columns))
	for i, c := range r.columns {
		v, ok := args[c.Name]
		if !ok {
			panic(fmt.Sprintf("datalog: relation %q: missing argument for column %q", r.name, c.Name))
		}
		values[i] = v
	}
	return &Single{rel: r, values: values}
}
