package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/datalite/internal/engine"
	"github.com/roach88/datalite/internal/program"
	"github.com/roach88/datalite/internal/store"
)

// Harness executes one scenario against a private store and engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// a fixed token sequence so provenance and transcripts reproduce
// exactly. Expectation failures accumulate in the result; Run itself
// errors only when the scenario cannot execute at all (program fails to
// load, a query fails to compile, a run fails without an error
// expectation).
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	prog, loadErrs := program.Load(scenario.Program, program.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("load program %s: %w", scenario.Program, errors.Join(loadErrs...))
	}

	tokens := make([]string, len(scenario.Runs))
	for i, step := range scenario.Runs {
		tokens[i] = step.Token
		if tokens[i] == "" {
			tokens[i] = fmt.Sprintf("%s-run-%d", scenario.Name, i+1)
		}
	}

	var opts []engine.EngineOption
	if scenario.MaxRounds > 0 {
		opts = append(opts, engine.WithMaxRounds(scenario.MaxRounds))
	}

	h := &Harness{
		store:  st,
		engine: engine.New(st, engine.NewFixedGenerator(tokens...), opts...),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()
	result.Fingerprint = prog.Fingerprint()

	if err := h.executeRuns(ctx, scenario, prog, tokens, result); err != nil {
		return nil, fmt.Errorf("failed to execute runs: %w", err)
	}

	if err := h.executeQueries(ctx, scenario.Queries, prog, result); err != nil {
		return nil, fmt.Errorf("failed to execute queries: %w", err)
	}

	return result, nil
}

// executeRuns submits the program once per run step and checks each
// outcome against the step's expect clause.
func (h *Harness) executeRuns(ctx context.Context, scenario *Scenario, prog *program.Program, tokens []string, result *Result) error {
	for i, step := range scenario.Runs {
		res, err := h.engine.Run(ctx, prog)
		if err != nil {
			if step.Expect == nil || step.Expect.Error == "" {
				return fmt.Errorf("run %d: %w", i, err)
			}
			if !strings.Contains(err.Error(), step.Expect.Error) {
				result.AddError(fmt.Sprintf("run %s: error %q does not contain %q", tokens[i], err.Error(), step.Expect.Error))
			}
			result.Runs = append(result.Runs, RunReport{Token: tokens[i], Err: err.Error()})
			h.logger.Info("run failed as expected",
				"step", i,
				"token", tokens[i],
				"error", err,
			)
			continue
		}

		result.Runs = append(result.Runs, RunReport{
			Token:   res.Token,
			Rounds:  res.Rounds,
			Derived: res.Derived,
			Counts:  res.Counts,
		})
		h.checkExpect(tokens[i], step.Expect, res, result)

		h.logger.Info("run completed",
			"step", i,
			"token", res.Token,
			"rounds", res.Rounds,
			"derived", res.Derived,
		)
	}
	return nil
}

// checkExpect compares one run's outcome to its expect clause. Checked
// count names are visited in sorted order so failure messages land in a
// stable order.
func (h *Harness) checkExpect(token string, expect *ExpectClause, res *engine.Result, result *Result) {
	if expect == nil {
		return
	}

	if expect.Error != "" {
		result.AddError(fmt.Sprintf("run %s: expected failure %q, run succeeded", token, expect.Error))
		return
	}

	if expect.Rounds != nil && res.Rounds != *expect.Rounds {
		result.AddError(fmt.Sprintf("run %s: rounds = %d, want %d", token, res.Rounds, *expect.Rounds))
	}

	if expect.Derived != nil && res.Derived != *expect.Derived {
		result.AddError(fmt.Sprintf("run %s: derived = %d, want %d", token, res.Derived, *expect.Derived))
	}

	names := make([]string, 0, len(expect.Counts))
	for name := range expect.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := expect.Counts[name]
		got, ok := res.Counts[name]
		if !ok {
			result.AddError(fmt.Sprintf("run %s: no count for relation %q", token, name))
			continue
		}
		if got != want {
			result.AddError(fmt.Sprintf("run %s: count %s = %d, want %d", token, name, got, want))
		}
	}
}

// executeQueries compiles and runs the scenario queries against the
// committed state, recording rows for the transcript.
func (h *Harness) executeQueries(ctx context.Context, queries []QueryStep, prog *program.Program, result *Result) error {
	if len(queries) == 0 {
		return nil
	}

	bound, errs := program.Bind(prog)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, step := range queries {
		q, err := bound.CompileQuery(step.Query)
		if err != nil {
			return fmt.Errorf("query %s: %w", step.Name, err)
		}

		rows, err := h.store.Query(ctx, q.Plan())
		if err != nil {
			return fmt.Errorf("query %s: %w", step.Name, err)
		}

		cols := q.Cols()
		vars := make([]string, len(cols))
		for i, v := range cols {
			vars[i] = string(v)
		}

		result.Queries = append(result.Queries, QueryReport{
			Name: step.Name,
			Text: step.Query,
			Vars: vars,
			Rows: rows,
		})
		h.logger.Info("query completed",
			"name", step.Name,
			"rows", len(rows),
		)
	}
	return nil
}
