package datalog

import (
	"fmt"
	"strings"
	"sync"
)

// Single is one relation invocation: a positional argument per column, each
// either a Var or a constant. Construct via Relation.Query or
// Relation.QueryNamed.
//
// Semantics:
//
//	SELECT <first-occurrence columns aliased to variable names>
//	FROM <relation>
//	WHERE <unification and constant equalities>
//
// A repeated variable unifies its positions: every position after the
// variable's first occurrence contributes an equality against the
// first-occurrence column. A constant contributes a parameterized equality
// at its own position. With no predicates at all the filter is always-true;
// with no variables at all the projection is a single NULL placeholder.
type Single struct {
	rel    *Relation
	values []any

	colsOnce sync.Once
	cols     []Var

	planOnce sync.Once
	plan     Plan
}

func (*Single) queryNode() {}

// Relation returns the invoked relation.
func (q *Single) Relation() *Relation { return q.rel }

// Cols returns the distinct variables appearing anywhere in the argument
// list, sorted by name. Constants contribute nothing.
func (q *Single) Cols() []Var {
	q.colsOnce.Do(q.computeCols)
	return append([]Var(nil), q.cols...)
}

// Plan returns the compiled selection over the relation's table.
func (q *Single) Plan() Plan {
	q.planOnce.Do(q.computePlan)
	return q.plan
}

func (q *Single) computeCols() {
	set := make(map[Var]struct{})
	for _, v := range q.values {
		if a, ok := v.(Var); ok {
			set[a] = struct{}{}
		}
	}
	q.cols = sortVars(set)
}

func (q *Single) computePlan() {
	q.colsOnce.Do(q.computeCols)
	cols := q.rel.columns

	// minArg maps each variable to its leftmost argument position.
	minArg := make(map[Var]int)
	for i, v := range q.values {
		if a, ok := v.(Var); ok {
			if _, seen := minArg[a]; !seen {
				minArg[a] = i
			}
		}
	}

	var conds []string
	var params []any
	for i, v := range q.values {
		if a, ok := v.(Var); ok {
			if j := minArg[a]; j != i {
				conds = append(conds, fmt.Sprintf("%s = %s", cols[i].Name, cols[j].Name))
			}
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = ?", cols[i].Name))
		params = append(params, v)
	}
	where := "1 = 1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	sel := "NULL"
	if len(q.cols) > 0 {
		parts := make([]string, 0, len(q.cols))
		for _, a := range q.cols {
			src := cols[minArg[a]].Name
			if src == string(a) {
				parts = append(parts, src)
			} else {
				parts = append(parts, fmt.Sprintf("%s AS %s", src, a))
			}
		}
		sel = strings.Join(parts, ", ")
	}

	q.plan = Plan{
		Text:   fmt.Sprintf("SELECT %s FROM %s WHERE %s", sel, q.rel.name, where),
		Params: params,
	}
}
