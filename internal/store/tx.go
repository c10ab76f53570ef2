package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/datalite/internal/datalog"
)

// Tx is a transactional unit of work over the store. It exposes the same
// relation and plan operations as Store, scoped to one transaction. Obtain
// one through WithTx; never retain it past the callback.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a single transaction: commit on a nil return, roll
// back and return fn's error otherwise. A panic in fn also rolls back, then
// propagates. All statements issued through the provided Tx commit or roll
// back together, leaving previously committed state untouched on failure.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// CreateRelation creates the relation's table if it does not already exist.
func (t *Tx) CreateRelation(ctx context.Context, rel *datalog.Relation) error {
	return createRelation(ctx, t.tx, rel)
}

// InsertRows bulk-inserts tuples into the relation within the transaction.
func (t *Tx) InsertRows(ctx context.Context, rel *datalog.Relation, rows [][]any) error {
	return insertRows(ctx, t.tx, rel, rows)
}

// Count returns the relation's row count as seen by the transaction.
func (t *Tx) Count(ctx context.Context, rel *datalog.Relation) (int64, error) {
	return countRows(ctx, t.tx, rel)
}

// Exec runs a write plan within the transaction and returns the number of
// rows changed.
func (t *Tx) Exec(ctx context.Context, plan datalog.Plan) (int64, error) {
	return execPlan(ctx, t.tx, plan)
}

// Query runs a read plan within the transaction.
func (t *Tx) Query(ctx context.Context, plan datalog.Plan) ([][]any, error) {
	return queryPlan(ctx, t.tx, plan)
}

// Select projects the named variables from a query within the transaction.
func (t *Tx) Select(ctx context.Context, vars []datalog.Var, q datalog.Query) ([][]any, error) {
	return selectVars(ctx, t.tx, vars, q)
}
