package datalog

import (
	"fmt"
	"strings"
)

// Rule compiles a `head <= body` declaration into a materialization plan:
// insert into the head's relation every tuple of the head's variables
// derivable from the body. The head must bind only variables, and every head
// variable must appear in the body's output set; violations return a
// *RuleError and no plan.
//
// The compiled statement selects the head's variables, in head argument
// order, from the body's plan. The selection carries an always-true filter
// so the duplicate-suppression clause parses unambiguously for any body
// form. For a set-typed head relation the insert drops duplicate tuples,
// which makes repeated application idempotent once a fixpoint is reached;
// the caller drives that resubmission loop (see internal/engine).
func Rule(head *Single, body Query) (Plan, error) {
	rel := head.rel

	names := make([]string, len(head.values))
	for i, v := range head.values {
		a, ok := v.(Var)
		if !ok {
			return Plan{}, NewNonVariableHeadError(rel.name, i)
		}
		names[i] = string(a)
	}

	bodyCols := body.Cols()
	seen := make(map[Var]struct{}, len(head.values))
	for _, v := range head.values {
		a := v.(Var)
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		if !containsVar(bodyCols, a) {
			return Plan{}, NewUnboundHeadVariableError(rel.name, string(a))
		}
	}

	bodyPlan := body.Plan()
	text := fmt.Sprintf("INSERT INTO %s SELECT %s FROM (%s) WHERE 1 = 1",
		rel.name, strings.Join(names, ", "), bodyPlan.Text)
	if rel.distinct {
		text += " ON CONFLICT DO NOTHING"
	}

	return Plan{Text: text, Params: append([]any(nil), bodyPlan.Params...)}, nil
}
