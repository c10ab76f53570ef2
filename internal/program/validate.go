package program

import (
	"fmt"
	"strings"

	"github.com/roach88/datalite/internal/datalog"
	"github.com/roach88/datalite/internal/parse"
)

// Validate checks the program's declarations against each other: names,
// schema shape, and every relation reference in facts and rules.
// Returns all errors found (does not fail-fast).
func (p *Program) Validate() []ValidationError {
	var errs []ValidationError

	arities := make(map[string]int, len(p.Relations))
	for _, rel := range p.Relations {
		field := "relation." + rel.Name

		// E101: relation name must be usable in statement text
		if !datalog.ValidIdent(rel.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("relation name %q must be a plain identifier", rel.Name),
				Code:    ErrCodeRelationName,
			})
		} else if strings.HasPrefix(rel.Name, "datalite_") || strings.HasPrefix(rel.Name, "sqlite_") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("relation name %q uses a reserved prefix", rel.Name),
				Code:    ErrCodeRelationName,
			})
		}

		// E104: relation names must be unique
		if _, dup := arities[rel.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate relation name %q", rel.Name),
				Code:    ErrCodeDuplicate,
			})
		} else {
			arities[rel.Name] = len(rel.Columns)
		}

		// E103: a relation with no columns has no tuples to hold
		if len(rel.Columns) == 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "relation must declare at least one column",
				Code:    ErrCodeNoColumns,
			})
		}

		seen := make(map[string]struct{}, len(rel.Columns))
		for _, col := range rel.Columns {
			colField := field + ".columns." + col.Name

			// E102: column name must be usable in statement text
			if !datalog.ValidIdent(col.Name) {
				errs = append(errs, ValidationError{
					Field:   colField,
					Message: fmt.Sprintf("column name %q must be a plain identifier", col.Name),
					Code:    ErrCodeColumnName,
				})
			}

			// E104: column names must be unique within the relation
			if _, dup := seen[col.Name]; dup {
				errs = append(errs, ValidationError{
					Field:   colField,
					Message: fmt.Sprintf("duplicate column name %q", col.Name),
					Code:    ErrCodeDuplicate,
				})
			}
			seen[col.Name] = struct{}{}

			// E107: types are interpolated into CREATE TABLE, so they
			// must be single identifiers such as INTEGER or TEXT
			if !datalog.ValidIdent(col.Type) {
				errs = append(errs, ValidationError{
					Field:   colField,
					Message: fmt.Sprintf("column type %q must be a plain identifier", col.Type),
					Code:    ErrCodeColumnType,
				})
			}
		}
	}

	for _, fs := range p.Facts {
		field := "fact." + fs.Relation

		// E105: facts must target a declared relation
		arity, ok := arities[fs.Relation]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("fact references undeclared relation %q", fs.Relation),
				Code:    ErrCodeUnknownRel,
			})
			continue
		}

		for i, row := range fs.Rows {
			// E106: every row must match the relation's arity
			if len(row) != arity {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("row %d has %d values, want %d", i, len(row), arity),
					Code:    ErrCodeArity,
				})
			}
			// E109: values must be storable scalars
			for j, v := range row {
				if !scalarValue(v) {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("row %d, value %d: unsupported type %T", i, j, v),
						Code:    ErrCodeFactValue,
					})
				}
			}
		}
	}

	ruleNames := make(map[string]struct{}, len(p.Rules))
	for _, r := range p.Rules {
		field := "rule." + r.Name

		// E104: rule names must be unique
		if _, dup := ruleNames[r.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate rule name %q", r.Name),
				Code:    ErrCodeDuplicate,
			})
		}
		ruleNames[r.Name] = struct{}{}

		// E110: the rule text must parse
		ast, err := ruleAST(r)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: err.Error(),
				Code:    ErrCodeRuleSyntax,
			})
			continue
		}

		head := ast.Head
		arity, ok := arities[head.Name]
		if !ok {
			// E105: the head must target a declared relation
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rule head references undeclared relation %q", head.Name),
				Code:    ErrCodeUnknownRel,
			})
		} else if len(head.Args) != arity {
			// E106: head argument count must match the relation
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("head %s has %d arguments, want %d", head.Name, len(head.Args), arity),
				Code:    ErrCodeArity,
			})
		}

		// E108: the head may bind only variables
		var headVars []string
		for i, t := range head.Args {
			v, isVar := t.(*parse.Variable)
			if !isVar {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("head argument %d must be a variable", i),
					Code:    ErrCodeRuleHead,
				})
				continue
			}
			headVars = append(headVars, v.Name)
		}

		walkAtoms(ast.Body, func(a *parse.Atom) {
			ar, known := arities[a.Name]
			if !known {
				// E105: body atoms must target declared relations
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("body references undeclared relation %q", a.Name),
					Code:    ErrCodeUnknownRel,
				})
				return
			}
			// E106: body atom argument count must match the relation
			if len(a.Args) != ar {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("body atom %s has %d arguments, want %d", a.Name, len(a.Args), ar),
					Code:    ErrCodeArity,
				})
			}
		})

		// E108: every head variable must be bound by the body
		bound := bodyVars(ast.Body)
		for _, name := range headVars {
			if _, ok := bound[name]; !ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("head variable %q is not bound by the body", name),
					Code:    ErrCodeRuleHead,
				})
			}
		}
	}

	return errs
}

// ruleAST returns the rule's parse tree, parsing Text when the rule was
// built in Go without one.
func ruleAST(r RuleDef) (*parse.Rule, error) {
	if r.AST != nil {
		return r.AST, nil
	}
	return parse.ParseRule(r.Text)
}

// scalarValue reports whether v is a value the store can hold in a
// relation column.
func scalarValue(v any) bool {
	switch v.(type) {
	case nil, bool, int, int64, float64, string:
		return true
	}
	return false
}

// bodyVars computes the variable set a body node exposes. A conjunction
// exposes the union of its sides, a union only the intersection,
// matching the output columns of the compiled query forms.
func bodyVars(n parse.Node) map[string]struct{} {
	switch b := n.(type) {
	case *parse.Atom:
		vars := make(map[string]struct{}, len(b.Args))
		for _, t := range b.Args {
			if v, ok := t.(*parse.Variable); ok {
				vars[v.Name] = struct{}{}
			}
		}
		return vars
	case *parse.And:
		vars := bodyVars(b.Left)
		for v := range bodyVars(b.Right) {
			vars[v] = struct{}{}
		}
		return vars
	case *parse.Or:
		left := bodyVars(b.Left)
		right := bodyVars(b.Right)
		vars := make(map[string]struct{})
		for v := range left {
			if _, ok := right[v]; ok {
				vars[v] = struct{}{}
			}
		}
		return vars
	default:
		return nil
	}
}

// walkAtoms visits every atom in a body tree, left to right.
func walkAtoms(n parse.Node, fn func(*parse.Atom)) {
	switch b := n.(type) {
	case *parse.Atom:
		fn(b)
	case *parse.And:
		walkAtoms(b.Left, fn)
		walkAtoms(b.Right, fn)
	case *parse.Or:
		walkAtoms(b.Left, fn)
		walkAtoms(b.Right, fn)
	}
}
