package program

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/datalite/internal/parse"
)

// Program is the decoded form of a datalite program: relation schemas,
// seed facts, and derivation rules. Load produces one from CUE files,
// Validate checks it, and Bind turns it into executable form.
//
// A Program can also be built directly in Go, in which case RuleDef.AST
// may be left nil and is parsed on demand.
type Program struct {
	Relations []RelationDef
	Facts     []FactSet
	Rules     []RuleDef
}

// RelationDef declares one relation schema.
type RelationDef struct {
	Name     string
	Columns  []ColumnDef
	Distinct bool
}

// ColumnDef is one (name, type) column of a relation. Type is a SQL
// column type such as "INTEGER" or "TEXT".
type ColumnDef struct {
	Name string
	Type string
}

// FactSet is a batch of seed rows for one relation.
type FactSet struct {
	Relation string
	Rows     [][]any
}

// RuleDef is one named derivation rule, kept in both source and parsed
// form. Text is the rule as written; AST is its parse tree.
type RuleDef struct {
	Name string
	Text string
	AST  *parse.Rule
}

// decodeRelation parses one entry of the top-level `relation` struct.
// Column declaration order in CUE is the relation's column order.
func decodeRelation(label string, v cue.Value) (RelationDef, error) {
	def := RelationDef{Name: label}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return def, decodeErr(v, "relation %q: columns is required", label)
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return def, decodeErr(colsVal, "relation %q: columns: %v", label, err)
	}
	for iter.Next() {
		typ, typErr := iter.Value().String()
		if typErr != nil {
			return def, decodeErr(iter.Value(), "relation %q: column %q: type must be a string", label, iter.Label())
		}
		def.Columns = append(def.Columns, ColumnDef{Name: iter.Label(), Type: typ})
	}

	distinctVal := v.LookupPath(cue.ParsePath("distinct"))
	if distinctVal.Exists() {
		distinct, boolErr := distinctVal.Bool()
		if boolErr != nil {
			return def, decodeErr(distinctVal, "relation %q: distinct must be a bool", label)
		}
		def.Distinct = distinct
	}

	return def, nil
}

// decodeFactSet parses one entry of the top-level `fact` struct. The
// value must be a list of rows, each row a list of scalar values.
func decodeFactSet(label string, v cue.Value) (FactSet, error) {
	fs := FactSet{Relation: label}

	rows, err := v.List()
	if err != nil {
		return fs, decodeErr(v, "fact %q: expected a list of rows: %v", label, err)
	}
	for i := 0; rows.Next(); i++ {
		cells, rowErr := rows.Value().List()
		if rowErr != nil {
			return fs, decodeErr(rows.Value(), "fact %q: row %d: expected a list of values: %v", label, i, rowErr)
		}
		var row []any
		for j := 0; cells.Next(); j++ {
			val, cellErr := decodeScalar(cells.Value())
			if cellErr != nil {
				return fs, decodeErr(cells.Value(), "fact %q: row %d, value %d: %v", label, i, j, cellErr)
			}
			row = append(row, val)
		}
		fs.Rows = append(fs.Rows, row)
	}

	return fs, nil
}

// decodeRule parses one entry of the top-level `rule` struct. The value
// must be a rule string, which is parsed immediately so syntax errors
// surface with the file position of the offending declaration.
func decodeRule(label string, v cue.Value) (RuleDef, error) {
	text, err := v.String()
	if err != nil {
		return RuleDef{}, decodeErr(v, "rule %q: expected a rule string", label)
	}
	ast, parseErr := parse.ParseRule(text)
	if parseErr != nil {
		return RuleDef{}, decodeErr(v, "rule %q: %v", label, parseErr)
	}
	return RuleDef{Name: label, Text: text, AST: ast}, nil
}

// decodeScalar converts a concrete CUE value to the Go value inserted
// into the store. Only null, bool, int, float, and string are accepted.
func decodeScalar(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	default:
		return nil, fmt.Errorf("unsupported value kind %v", v.Kind())
	}
}
