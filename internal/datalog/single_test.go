package datalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEdge() *Relation {
	return NewRelation("edge",
		Column{Name: "src", Type: "INTEGER"},
		Column{Name: "dst", Type: "INTEGER"},
	)
}

func TestSingle_Compile(t *testing.T) {
	edge := testEdge()
	x, y := Var("x"), Var("y")

	testCases := []struct {
		name       string
		query      *Single
		wantText   string
		wantParams []any
	}{
		{
			name:     "all variables",
			query:    edge.Query(x, y),
			wantText: "SELECT src AS x, dst AS y FROM edge WHERE 1 = 1",
		},
		{
			name:     "repeated variable unifies positions",
			query:    edge.Query(x, x),
			wantText: "SELECT src AS x FROM edge WHERE dst = src",
		},
		{
			name:       "constant before variable",
			query:      edge.Query(1, x),
			wantText:   "SELECT dst AS x FROM edge WHERE src = ?",
			wantParams: []any{1},
		},
		{
			name:       "constant after variable binds its own column",
			query:      edge.Query(x, 5),
			wantText:   "SELECT src AS x FROM edge WHERE dst = ?",
			wantParams: []any{5},
		},
		{
			name:       "all constants project a null placeholder",
			query:      edge.Query(1, 2),
			wantText:   "SELECT NULL FROM edge WHERE src = ? AND dst = ?",
			wantParams: []any{1, 2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan := tc.query.Plan()
			assert.Equal(t, tc.wantText, plan.Text)
			assert.Equal(t, tc.wantParams, plan.Params)
		})
	}
}

func TestSingle_ColumnNamedLikeVariableSkipsAlias(t *testing.T) {
	nodes := NewRelation("nodes",
		Column{Name: "x", Type: "INTEGER"},
		Column{Name: "y", Type: "INTEGER"},
	)

	plan := nodes.Query(Var("x"), Var("y")).Plan()
	assert.Equal(t, "SELECT x, y FROM nodes WHERE 1 = 1", plan.Text)
}

func TestSingle_NoStringInterpolation(t *testing.T) {
	edge := testEdge()

	// A value that would be dangerous if it reached the statement text.
	dangerous := "'; DROP TABLE edge; --"
	plan := edge.Query(Var("x"), dangerous).Plan()

	assert.NotContains(t, plan.Text, dangerous)
	assert.Contains(t, plan.Text, "dst = ?")
	assert.Equal(t, []any{dangerous}, plan.Params)
}

func TestSingle_Cols(t *testing.T) {
	edge := testEdge()
	x, y := Var("x"), Var("y")

	assert.Equal(t, []Var{"x", "y"}, edge.Query(x, y).Cols())
	assert.Equal(t, []Var{"x", "y"}, edge.Query(y, x).Cols(), "cols are sorted by name")
	assert.Equal(t, []Var{"x"}, edge.Query(x, x).Cols(), "repetition contributes one variable")
	assert.Empty(t, edge.Query(1, 2).Cols(), "constants contribute nothing")
}

func TestSingle_ColsReturnsCopy(t *testing.T) {
	edge := testEdge()
	q := edge.Query(Var("x"), Var("y"))

	cols := q.Cols()
	cols[0] = Var("mutated")
	assert.Equal(t, []Var{"x", "y"}, q.Cols())
}

func TestSingle_PlanIsStable(t *testing.T) {
	edge := testEdge()
	q := edge.Query(Var("x"), 7)

	first := q.Plan()
	second := q.Plan()
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Params, second.Params)
}
