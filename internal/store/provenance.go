package store

import (
	"context"
	"fmt"
)

// Run is one recorded engine run: which program ran (by fingerprint), under
// which token, how many rounds it took, and how many rows it derived.
type Run struct {
	Token       string
	Fingerprint string
	Rounds      int
	Derived     int64
	CreatedAt   string
}

// RecordRun inserts a run provenance record.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - duplicate tokens are
// silently ignored.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	return recordRun(ctx, s.db, run)
}

// RecordRun inserts a run provenance record within the transaction, so the
// record commits or rolls back together with the run's derivations.
func (t *Tx) RecordRun(ctx context.Context, run Run) error {
	return recordRun(ctx, t.tx, run)
}

func recordRun(ctx context.Context, q querier, run Run) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO datalite_runs
		(token, fingerprint, rounds, derived)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Fingerprint,
		run.Rounds,
		run.Derived,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns all recorded runs, oldest first.
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, fingerprint, rounds, derived, created_at
		FROM datalite_runs
		ORDER BY created_at ASC, token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.Token, &run.Fingerprint, &run.Rounds, &run.Derived, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}
