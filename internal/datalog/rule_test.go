package datalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_TransitiveClosure(t *testing.T) {
	edge := testEdge()
	path := testPath()
	x, y, z := Var("x"), Var("y"), Var("z")

	body := NewOr(
		edge.Query(x, z),
		NewAnd(edge.Query(x, y), path.Query(y, z)),
	)

	plan, err := Rule(path.Query(x, z), body)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plan.Text, "INSERT INTO path SELECT x, z FROM ("), plan.Text)
	assert.True(t, strings.HasSuffix(plan.Text, ") WHERE 1 = 1 ON CONFLICT DO NOTHING"), plan.Text)
	assert.Contains(t, plan.Text, body.Plan().Text)
	assert.Empty(t, plan.Params)
}

func TestRule_BagHeadOmitsConflictClause(t *testing.T) {
	edge := testEdge()
	out := NewRelation("reachable",
		Column{Name: "src", Type: "INTEGER"},
		Column{Name: "dst", Type: "INTEGER"},
	)
	x, y := Var("x"), Var("y")

	plan, err := Rule(out.Query(x, y), edge.Query(x, y))
	require.NoError(t, err)
	assert.NotContains(t, plan.Text, "ON CONFLICT")
	assert.True(t, strings.HasSuffix(plan.Text, "WHERE 1 = 1"), plan.Text)
}

func TestRule_HeadOrderIsPreserved(t *testing.T) {
	edge := testEdge()
	flipped := NewRelationSet("flipped",
		Column{Name: "src", Type: "INTEGER"},
		Column{Name: "dst", Type: "INTEGER"},
	)
	x, y := Var("x"), Var("y")

	// Head binds (y, x): the select list follows head argument order, not
	// sorted variable order.
	plan, err := Rule(flipped.Query(y, x), edge.Query(x, y))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plan.Text, "INSERT INTO flipped SELECT y, x FROM ("), plan.Text)
}

func TestRule_RepeatedHeadVariable(t *testing.T) {
	edge := testEdge()
	loop := NewRelationSet("loop",
		Column{Name: "src", Type: "INTEGER"},
		Column{Name: "dst", Type: "INTEGER"},
	)
	x := Var("x")

	plan, err := Rule(loop.Query(x, x), edge.Query(x, x))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plan.Text, "INSERT INTO loop SELECT x, x FROM ("), plan.Text)
}

func TestRule_NonVariableHead(t *testing.T) {
	edge := testEdge()
	path := testPath()
	x := Var("x")

	_, err := Rule(path.Query(x, 1), edge.Query(x, Var("z")))
	require.Error(t, err)

	var re *RuleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeNonVariableHead, re.Code)
	assert.Equal(t, "path", re.Relation)
	assert.Equal(t, 1, re.Position)
	assert.True(t, IsRuleError(err))
}

func TestRule_UnboundHeadVariable(t *testing.T) {
	edge := testEdge()
	path := testPath()
	x, z, w := Var("x"), Var("z"), Var("w")

	_, err := Rule(path.Query(x, w), edge.Query(x, z))
	require.Error(t, err)

	var re *RuleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeUnboundHeadVariable, re.Code)
	assert.Equal(t, "path", re.Relation)
	assert.Equal(t, "w", re.Var, "error names the offending variable")
	assert.Contains(t, err.Error(), "w")
}

func TestRule_BodyParamsCarryThrough(t *testing.T) {
	edge := testEdge()
	path := testPath()
	x, z := Var("x"), Var("z")

	// Constants in the body surface as the rule plan's parameters,
	// left to right.
	body := NewOr(
		NewAnd(edge.Query(x, 7), edge.Query(8, z)),
		edge.Query(x, z),
	)
	plan, err := Rule(path.Query(x, z), body)
	require.NoError(t, err)
	assert.Equal(t, []any{7, 8}, plan.Params)
}
