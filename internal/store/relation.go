package store

import (
	"context"
	"fmt"

	"github.com/roach88/datalite/internal/datalog"
)

// CreateRelation creates the relation's table if it does not already exist.
// Idempotent: repeated calls are no-ops.
func (s *Store) CreateRelation(ctx context.Context, rel *datalog.Relation) error {
	return createRelation(ctx, s.db, rel)
}

// InsertRows bulk-inserts tuples into the relation, one placeholder row at a
// time through a prepared statement. Every row must match the relation's
// column order and arity. For a distinct relation, duplicate tuples are
// silently dropped, never erroring.
func (s *Store) InsertRows(ctx context.Context, rel *datalog.Relation, rows [][]any) error {
	return insertRows(ctx, s.db, rel, rows)
}

// Count returns the relation's total row count. This is the external
// convergence check for fixpoint evaluation: a rule set has converged when a
// full application round changes no relation's count.
func (s *Store) Count(ctx context.Context, rel *datalog.Relation) (int64, error) {
	return countRows(ctx, s.db, rel)
}

func createRelation(ctx context.Context, q querier, rel *datalog.Relation) error {
	if _, err := q.ExecContext(ctx, rel.CreateSQL()); err != nil {
		return fmt.Errorf("create relation %s: %w", rel.Name(), err)
	}
	return nil
}

func insertRows(ctx context.Context, q querier, rel *datalog.Relation, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := q.PrepareContext(ctx, rel.InsertSQL())
	if err != nil {
		return fmt.Errorf("insert into %s: prepare: %w", rel.Name(), err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != rel.Arity() {
			return fmt.Errorf("insert into %s: row %d has %d values, want %d",
				rel.Name(), i, len(row), rel.Arity())
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", rel.Name(), i, err)
		}
	}

	return nil
}

func countRows(ctx context.Context, q querier, rel *datalog.Relation) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", rel.Name())
	if err := q.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", rel.Name(), err)
	}
	return n, nil
}
