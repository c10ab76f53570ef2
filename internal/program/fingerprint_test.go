package program

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closureProgram() *Program {
	return &Program{
		Relations: edgePathRelations(),
		Facts:     []FactSet{{Relation: "edge", Rows: [][]any{{int64(1), int64(2)}, {int64(2), int64(3)}}}},
		Rules:     []RuleDef{{Name: "closure", Text: "path(x, z) <= edge(x, z) | (edge(x, y) & path(y, z))"}},
	}
}

func TestFingerprintStable(t *testing.T) {
	fp1 := closureProgram().Fingerprint()
	fp2 := closureProgram().Fingerprint()

	assert.Equal(t, fp1, fp2)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), fp1)
}

func TestFingerprintIgnoresRuleFormatting(t *testing.T) {
	reference := closureProgram()

	reformatted := closureProgram()
	reformatted.Rules[0].Text = "path(x,z)<=edge(x,z)|edge(x,y)&path(y,z)"

	assert.Equal(t, reference.Fingerprint(), reformatted.Fingerprint())
}

func TestFingerprintIgnoresDeclarationOrder(t *testing.T) {
	reference := closureProgram()

	shuffled := closureProgram()
	shuffled.Relations[0], shuffled.Relations[1] = shuffled.Relations[1], shuffled.Relations[0]
	rows := shuffled.Facts[0].Rows
	rows[0], rows[1] = rows[1], rows[0]

	assert.Equal(t, reference.Fingerprint(), shuffled.Fingerprint())
}

func TestFingerprintSeesSchemaChange(t *testing.T) {
	reference := closureProgram()

	relaxed := closureProgram()
	relaxed.Relations[1].Distinct = false

	assert.NotEqual(t, reference.Fingerprint(), relaxed.Fingerprint())
}

func TestFingerprintSeesFactChange(t *testing.T) {
	reference := closureProgram()

	extended := closureProgram()
	extended.Facts[0].Rows = append(extended.Facts[0].Rows, []any{int64(3), int64(4)})

	assert.NotEqual(t, reference.Fingerprint(), extended.Fingerprint())
}

func TestFingerprintSeesRuleRename(t *testing.T) {
	reference := closureProgram()

	renamed := closureProgram()
	renamed.Rules[0].Name = "reach"

	assert.NotEqual(t, reference.Fingerprint(), renamed.Fingerprint())
}

func TestFingerprintKeepsFactMultiplicity(t *testing.T) {
	reference := closureProgram()

	doubled := closureProgram()
	doubled.Facts[0].Rows = append(doubled.Facts[0].Rows, []any{int64(1), int64(2)})

	assert.NotEqual(t, reference.Fingerprint(), doubled.Fingerprint())
}

func TestCanonicalRendering(t *testing.T) {
	got := closureProgram().Canonical()

	want := "relation edge(src INTEGER, dst INTEGER)\n" +
		"relation path(src INTEGER, dst INTEGER) distinct\n" +
		"fact edge(1, 2)\n" +
		"fact edge(2, 3)\n" +
		"rule closure: path(x, z) <= edge(x, z) | edge(x, y) & path(y, z)\n"
	assert.Equal(t, want, got)
}

func TestCanonicalParenthesizesUnionUnderConjunction(t *testing.T) {
	p := &Program{
		Rules: []RuleDef{{Name: "r", Text: "q(x) <= (a(x) | b(x)) & c(x)"}},
	}

	assert.Equal(t, "rule r: q(x) <= (a(x) | b(x)) & c(x)\n", p.Canonical())
}

func TestCanonicalConstants(t *testing.T) {
	p := &Program{
		Rules: []RuleDef{{Name: "r", Text: `q(x) <= t(x, 5, -2.5, 3.0, "hi", true, null)`}},
	}

	require.Equal(t, "rule r: q(x) <= t(x, 5, -2.5, 3.0, \"hi\", true, null)\n", p.Canonical())
}

func TestCanonicalUnparseableRuleFallsBackToText(t *testing.T) {
	p := &Program{
		Rules: []RuleDef{{Name: "broken", Text: "path(x"}},
	}

	assert.Equal(t, "rule broken: path(x\n", p.Canonical())
}
