package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/datalite/internal/program"
	"github.com/roach88/datalite/internal/store"
)

// DefaultMaxRounds is the default maximum number of rule rounds per run.
// This prevents non-converging programs from consuming unbounded resources.
const DefaultMaxRounds = 64

// Engine executes programs against a store, one transactional run at a
// time. Safe for sequential reuse; a single Engine can perform any
// number of runs against the same database.
type Engine struct {
	store     *store.Store
	tokens    TokenGenerator
	maxRounds int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxRounds sets the maximum rule rounds per run.
//
// Default: 64 rounds (DefaultMaxRounds)
// Use a higher limit for deep recursive closures over long chains.
// Use WithMaxRounds(2) for testing limit enforcement.
func WithMaxRounds(n int) EngineOption {
	return func(e *Engine) {
		e.maxRounds = n
	}
}

// New creates an Engine with the given store and token generator.
//
// Options can be passed to configure the engine (e.g., WithMaxRounds).
func New(s *store.Store, tokens TokenGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     s,
		tokens:    tokens,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes one completed run.
type Result struct {
	Token       string           // Run token, also recorded in provenance
	Fingerprint string           // Program fingerprint at run time
	Rounds      int              // Rule rounds executed, including the final empty one
	Derived     int64            // Rows inserted by rules across all rounds
	Counts      map[string]int64 // Per-relation row count after the run
}

// Run executes the program as one atomic run: bind, create relations,
// insert facts, apply rules to fixpoint, record provenance. Resubmitting
// the same program is safe for distinct relations (already-derived
// tuples are dropped) and additive for bag relations, whose facts and
// rule output accumulate per run.
//
// Returns the validation errors joined if the program does not bind, a
// RoundsExceededError if rules fail to converge within the round limit,
// or the first store error encountered. On any error the transaction
// rolls back and the database keeps its pre-run state.
func (e *Engine) Run(ctx context.Context, prog *program.Program) (*Result, error) {
	bound, errs := program.Bind(prog)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	res := &Result{
		Token:       e.tokens.Generate(),
		Fingerprint: prog.Fingerprint(),
		Counts:      make(map[string]int64),
	}

	slog.Info("run starting",
		"token", res.Token,
		"relations", len(bound.Relations),
		"facts", len(bound.Facts),
		"rules", len(bound.Rules),
	)

	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, name := range bound.RelationNames() {
			if err := tx.CreateRelation(ctx, bound.Relations[name]); err != nil {
				return err
			}
		}

		for _, fact := range bound.Facts {
			if err := tx.InsertRows(ctx, fact.Relation, fact.Rows); err != nil {
				return err
			}
		}

		rounds, derived, err := e.applyRules(ctx, tx, bound, res.Token)
		if err != nil {
			return err
		}
		res.Rounds = rounds
		res.Derived = derived

		for _, name := range bound.RelationNames() {
			n, err := tx.Count(ctx, bound.Relations[name])
			if err != nil {
				return err
			}
			res.Counts[name] = n
		}

		return tx.RecordRun(ctx, store.Run{
			Token:       res.Token,
			Fingerprint: res.Fingerprint,
			Rounds:      res.Rounds,
			Derived:     res.Derived,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("run finished",
		"token", res.Token,
		"rounds", res.Rounds,
		"derived", res.Derived,
	)
	return res, nil
}

// applyRules drives rule application to fixpoint. The first round runs
// every rule once, in name order; later rounds resubmit only the
// distinct-headed rules until a full round inserts nothing. The insert
// counts come from the statements themselves: with conflicting tuples
// dropped rather than errored, affected rows equal genuinely new rows.
func (e *Engine) applyRules(ctx context.Context, tx *store.Tx, bound *program.Bound, token string) (int, int64, error) {
	if len(bound.Rules) == 0 {
		return 0, 0, nil
	}

	iterating := false
	for _, rule := range bound.Rules {
		if rule.Distinct {
			iterating = true
		}
	}

	rounds := 0
	var derived int64
	for {
		rounds++
		if rounds > e.maxRounds {
			return rounds, derived, &RoundsExceededError{
				Token:  token,
				Rounds: rounds,
				Limit:  e.maxRounds,
			}
		}

		var inserted int64
		for _, rule := range bound.Rules {
			if rounds > 1 && !rule.Distinct {
				continue
			}
			n, err := tx.Exec(ctx, rule.Plan)
			if err != nil {
				return rounds, derived, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			inserted += n
			derived += n
		}

		slog.Debug("round finished",
			"token", token,
			"round", rounds,
			"inserted", inserted,
		)

		if !iterating || inserted == 0 {
			return rounds, derived, nil
		}
	}
}
