package datalog

import (
	"fmt"
	"strings"
	"sync"
)

// And is the conjunction of two queries: a natural join equating every
// variable shared by both children's output sets.
//
// Semantics:
//
//	SELECT <union of both children's variables, sorted, each read from
//	        the left child when it binds the variable, else the right>
//	FROM (<left>) AS _t1, (<right>) AS _t2
//	WHERE <_t1.v = _t2.v for each shared variable>
//
// With no shared variables the join degenerates to an unfiltered cross
// product; ensuring shared variables exist where a real join is intended is
// the caller's responsibility.
type And struct {
	left  Query
	right Query

	colsOnce sync.Once
	cols     []Var

	planOnce sync.Once
	plan     Plan
}

// NewAnd constructs the conjunction of left and right.
// Panics if either child is nil.
func NewAnd(left, right Query) *And {
	if left == nil || right == nil {
		panic("datalog: NewAnd requires non-nil children")
	}
	return &And{left: left, right: right}
}

func (*And) queryNode() {}

// Cols returns the union of the children's output variables, sorted by name.
func (q *And) Cols() []Var {
	q.colsOnce.Do(q.computeCols)
	return append([]Var(nil), q.cols...)
}

// Plan returns the compiled join over the children's plans.
func (q *And) Plan() Plan {
	q.planOnce.Do(q.computePlan)
	return q.plan
}

func (q *And) computeCols() {
	q.cols = unionVars(q.left.Cols(), q.right.Cols())
}

func (q *And) computePlan() {
	q.colsOnce.Do(q.computeCols)
	left := q.left.Plan()
	right := q.right.Plan()
	lcols := q.left.Cols()
	rcols := q.right.Cols()

	// Projection order matches Cols().
	parts := make([]string, 0, len(q.cols))
	for _, a := range q.cols {
		side := "_t1"
		if !containsVar(lcols, a) {
			side = "_t2"
		}
		parts = append(parts, fmt.Sprintf("%s.%s AS %s", side, a, a))
	}
	sel := "NULL"
	if len(parts) > 0 {
		sel = strings.Join(parts, ", ")
	}

	text := fmt.Sprintf("SELECT %s FROM (%s) AS _t1, (%s) AS _t2", sel, left.Text, right.Text)
	if shared := intersectVars(lcols, rcols); len(shared) > 0 {
		on := make([]string, 0, len(shared))
		for _, a := range shared {
			on = append(on, fmt.Sprintf("_t1.%s = _t2.%s", a, a))
		}
		text += " WHERE " + strings.Join(on, " AND ")
	}

	params := make([]any, 0, len(left.Params)+len(right.Params))
	params = append(params, left.Params...)
	params = append(params, right.Params...)

	q.plan = Plan{Text: text, Params: params}
}
