package program

import (
	"fmt"
	"sort"

	"github.com/roach88/datalite/internal/datalog"
	"github.com/roach88/datalite/internal/parse"
)

// Bound is a validated program in executable form: relation handles for
// the store plus one compiled materialization plan per rule. Rules are
// ordered by name so application order never depends on file layout.
type Bound struct {
	Relations map[string]*datalog.Relation
	Facts     []BoundFact
	Rules     []BoundRule
}

// BoundFact pairs seed rows with their relation handle.
type BoundFact struct {
	Relation *datalog.Relation
	Rows     [][]any
}

// BoundRule is one rule compiled to its insert plan. Distinct mirrors
// the head relation: a distinct head drops already-derived tuples, which
// is what lets the engine resubmit the plan until it stops producing.
type BoundRule struct {
	Name     string
	Plan     datalog.Plan
	Distinct bool
}

// RelationNames returns the declared relation names in sorted order.
func (b *Bound) RelationNames() []string {
	names := make([]string, 0, len(b.Relations))
	for name := range b.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind validates the program and compiles it to executable form. The
// returned errors are the ValidationErrors from Validate; the Bound is
// nil unless validation passed cleanly.
func Bind(p *Program) (*Bound, []error) {
	if verrs := p.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errs
	}

	b := &Bound{Relations: make(map[string]*datalog.Relation, len(p.Relations))}
	for _, def := range p.Relations {
		cols := make([]datalog.Column, len(def.Columns))
		for i, c := range def.Columns {
			cols[i] = datalog.Column{Name: c.Name, Type: c.Type}
		}
		if def.Distinct {
			b.Relations[def.Name] = datalog.NewRelationSet(def.Name, cols...)
		} else {
			b.Relations[def.Name] = datalog.NewRelation(def.Name, cols...)
		}
	}

	for _, fs := range p.Facts {
		b.Facts = append(b.Facts, BoundFact{Relation: b.Relations[fs.Relation], Rows: fs.Rows})
	}

	for _, r := range p.Rules {
		ast, err := ruleAST(r)
		if err != nil {
			return nil, []error{ValidationError{Field: "rule." + r.Name, Message: err.Error(), Code: ErrCodeRuleSyntax}}
		}
		headRel := b.Relations[ast.Head.Name]
		head := headRel.Query(termValues(ast.Head.Args)...)
		plan, ruleErr := datalog.Rule(head, buildQuery(ast.Body, b.Relations))
		if ruleErr != nil {
			return nil, []error{ValidationError{Field: "rule." + r.Name, Message: ruleErr.Error(), Code: ErrCodeRuleHead}}
		}
		b.Rules = append(b.Rules, BoundRule{Name: r.Name, Plan: plan, Distinct: headRel.Distinct()})
	}
	sort.Slice(b.Rules, func(i, j int) bool { return b.Rules[i].Name < b.Rules[j].Name })

	return b, nil
}

// CompileQuery parses and compiles ad hoc query text against the bound
// program's relations. The text uses the rule body grammar: relation
// atoms joined with & and |. Callers take the result's Plan for
// execution and Cols for presenting the projected variables.
func (b *Bound) CompileQuery(text string) (datalog.Query, error) {
	node, err := parse.ParseQuery(text)
	if err != nil {
		return nil, err
	}

	var atomErr error
	walkAtoms(node, func(a *parse.Atom) {
		if atomErr != nil {
			return
		}
		rel, ok := b.Relations[a.Name]
		if !ok {
			atomErr = fmt.Errorf("query references undeclared relation %q", a.Name)
			return
		}
		if len(a.Args) != rel.Arity() {
			atomErr = fmt.Errorf("query atom %s has %d arguments, want %d", a.Name, len(a.Args), rel.Arity())
		}
	})
	if atomErr != nil {
		return nil, atomErr
	}

	return buildQuery(node, b.Relations), nil
}

// buildQuery lowers a body tree onto relation queries.
func buildQuery(n parse.Node, rels map[string]*datalog.Relation) datalog.Query {
	switch b := n.(type) {
	case *parse.Atom:
		return rels[b.Name].Query(termValues(b.Args)...)
	case *parse.And:
		return datalog.NewAnd(buildQuery(b.Left, rels), buildQuery(b.Right, rels))
	case *parse.Or:
		return datalog.NewOr(buildQuery(b.Left, rels), buildQuery(b.Right, rels))
	default:
		return nil
	}
}

// termValues converts atom arguments to query arguments: variables stay
// variables, constants become bound values.
func termValues(args []parse.Term) []any {
	vals := make([]any, len(args))
	for i, t := range args {
		switch a := t.(type) {
		case *parse.Variable:
			vals[i] = datalog.Var(a.Name)
		case *parse.Constant:
			vals[i] = a.Value
		}
	}
	return vals
}
