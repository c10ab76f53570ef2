package datalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPath() *Relation {
	return NewRelationSet("path",
		Column{Name: "src", Type: "INTEGER"},
		Column{Name: "dst", Type: "INTEGER"},
	)
}

func TestAnd_Compile_NaturalJoin(t *testing.T) {
	edge := testEdge()
	x, y, z := Var("x"), Var("y"), Var("z")

	q := NewAnd(edge.Query(x, y), edge.Query(y, z))
	plan := q.Plan()

	want := "SELECT _t1.x AS x, _t1.y AS y, _t2.z AS z " +
		"FROM (SELECT src AS x, dst AS y FROM edge WHERE 1 = 1) AS _t1, " +
		"(SELECT src AS y, dst AS z FROM edge WHERE 1 = 1) AS _t2 " +
		"WHERE _t1.y = _t2.y"
	assert.Equal(t, want, plan.Text)
	assert.Empty(t, plan.Params)
}

func TestAnd_Compile_CrossProductWithoutSharedVars(t *testing.T) {
	left := NewRelation("left_rel", Column{Name: "a", Type: "INTEGER"})
	right := NewRelation("right_rel", Column{Name: "b", Type: "INTEGER"})

	q := NewAnd(left.Query(Var("x")), right.Query(Var("y")))
	plan := q.Plan()

	assert.NotContains(t, plan.Text, "WHERE _t1", "cross product carries no join filter")
	assert.Contains(t, plan.Text, "AS _t1, (")
	assert.Equal(t, []Var{"x", "y"}, q.Cols())
}

func TestAnd_Cols_IsUnion(t *testing.T) {
	edge := testEdge()
	x, y, z := Var("x"), Var("y"), Var("z")

	testCases := []struct {
		name  string
		left  Query
		right Query
		want  []Var
	}{
		{
			name:  "overlapping",
			left:  edge.Query(x, y),
			right: edge.Query(y, z),
			want:  []Var{"x", "y", "z"},
		},
		{
			name:  "identical",
			left:  edge.Query(x, y),
			right: edge.Query(x, y),
			want:  []Var{"x", "y"},
		},
		{
			name:  "disjoint",
			left:  edge.Query(x, 1),
			right: edge.Query(2, y),
			want:  []Var{"x", "y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewAnd(tc.left, tc.right).Cols())
		})
	}
}

func TestOr_Compile_Union(t *testing.T) {
	edge := testEdge()
	x, y := Var("x"), Var("y")

	q := NewOr(edge.Query(x, y), edge.Query(y, x))
	plan := q.Plan()

	want := "SELECT x, y FROM (" +
		"SELECT x, y FROM (SELECT src AS x, dst AS y FROM edge WHERE 1 = 1) " +
		"UNION ALL " +
		"SELECT x, y FROM (SELECT dst AS x, src AS y FROM edge WHERE 1 = 1))"
	assert.Equal(t, want, plan.Text)
}

func TestOr_Cols_IsIntersection(t *testing.T) {
	edge := testEdge()
	x, y, z := Var("x"), Var("y"), Var("z")

	// A branch may carry extra variables; they are dropped, not rejected.
	q := NewOr(edge.Query(x, y), NewAnd(edge.Query(x, z), edge.Query(z, y)))
	assert.Equal(t, []Var{"x", "y"}, q.Cols())

	plan := q.Plan()
	assert.Contains(t, plan.Text, "SELECT x, y FROM (")
	assert.NotContains(t, plan.Text, "SELECT x, y, z FROM (")
}

func TestOr_Compile_NoCommonVariables(t *testing.T) {
	edge := testEdge()

	q := NewOr(edge.Query(Var("x"), 1), edge.Query(2, Var("y")))
	require.Empty(t, q.Cols())

	plan := q.Plan()
	assert.Equal(t,
		"SELECT NULL FROM ("+
			"SELECT NULL FROM (SELECT src AS x FROM edge WHERE dst = ?) "+
			"UNION ALL "+
			"SELECT NULL FROM (SELECT dst AS y FROM edge WHERE src = ?))",
		plan.Text)
	assert.Equal(t, []any{1, 2}, plan.Params)
}

func TestOr_ParamOrderIsLeftThenRight(t *testing.T) {
	edge := testEdge()
	x := Var("x")

	q := NewOr(edge.Query(10, x), edge.Query(20, x))
	assert.Equal(t, []any{10, 20}, q.Plan().Params)
}

func TestQuery_TransitiveClosureBodyShape(t *testing.T) {
	edge := testEdge()
	path := testPath()
	x, y, z := Var("x"), Var("y"), Var("z")

	body := NewOr(
		edge.Query(x, z),
		NewAnd(edge.Query(x, y), path.Query(y, z)),
	)

	assert.Equal(t, []Var{"x", "z"}, body.Cols())

	plan := body.Plan()
	assert.Contains(t, plan.Text, "UNION ALL")
	assert.Contains(t, plan.Text, "FROM path")
	assert.Contains(t, plan.Text, "_t1.y = _t2.y")
	assert.Empty(t, plan.Params)
}

func TestQuery_NestedTreesCompileOneSubqueryPerLevel(t *testing.T) {
	edge := testEdge()
	x, y := Var("x"), Var("y")

	q := NewOr(
		NewOr(edge.Query(x, y), edge.Query(y, x)),
		edge.Query(x, y),
	)

	// Two Or levels produce two nested union selects; no flattening pass.
	plan := q.Plan()
	assert.Equal(t, 2, countOccurrences(plan.Text, "UNION ALL"))
}

func TestNewAnd_NilChildPanics(t *testing.T) {
	edge := testEdge()
	assert.Panics(t, func() { NewAnd(nil, edge.Query(Var("x"), Var("y"))) })
	assert.Panics(t, func() { NewOr(edge.Query(Var("x"), Var("y")), nil) })
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
