package datalog

import (
	"fmt"
	"strings"
	"sync"
)

// Or is the disjunction of two queries: a union over the variables common to
// both children.
//
// Semantics:
//
//	SELECT <common names> FROM (
//	    SELECT <common names> FROM (<left>)
//	    UNION ALL
//	    SELECT <common names> FROM (<right>)
//	)
//
// The output variable set is the intersection of the children's sets. A
// branch may carry extra variables; they are silently dropped by the inner
// re-selection rather than rejected. With no common variables both branches
// degenerate to the single NULL placeholder projection. UNION ALL preserves
// branch duplicates; deduplication happens only when results land in a
// set-typed relation.
type Or struct {
	left  Query
	right Query

	colsOnce sync.Once
	cols     []Var

	planOnce sync.Once
	plan     Plan
}

// NewOr constructs the disjunction of left and right.
// Panics if either child is nil.
func NewOr(left, right Query) *Or {
	if left == nil || right == nil {
		panic("datalog: NewOr requires non-nil children")
	}
	return &Or{left: left, right: right}
}

func (*Or) queryNode() {}

// Cols returns the intersection of the children's output variables, sorted
// by name.
func (q *Or) Cols() []Var {
	q.colsOnce.Do(q.computeCols)
	return append([]Var(nil), q.cols...)
}

// Plan returns the compiled union over the children's plans.
func (q *Or) Plan() Plan {
	q.planOnce.Do(q.computePlan)
	return q.plan
}

func (q *Or) computeCols() {
	q.cols = intersectVars(q.left.Cols(), q.right.Cols())
}

func (q *Or) computePlan() {
	q.colsOnce.Do(q.computeCols)
	left := q.left.Plan()
	right := q.right.Plan()

	names := "NULL"
	if len(q.cols) > 0 {
		parts := make([]string, len(q.cols))
		for i, a := range q.cols {
			parts[i] = string(a)
		}
		names = strings.Join(parts, ", ")
	}

	text := fmt.Sprintf("SELECT %s FROM (SELECT %s FROM (%s) UNION ALL SELECT %s FROM (%s))",
		names, names, left.Text, names, right.Text)

	params := make([]any, 0, len(left.Params)+len(right.Params))
	params = append(params, left.Params...)
	params = append(params, right.Params...)

	q.plan = Plan{Text: text, Params: params}
}
