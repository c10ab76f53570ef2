package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/datalite/internal/datalog"
)

// Exec runs a write plan (rule application) and returns the number of rows
// the statement changed. Duplicate tuples suppressed by a distinct head
// relation do not count as changes, so a zero return from a rule application
// means the rule derived nothing new.
func (s *Store) Exec(ctx context.Context, plan datalog.Plan) (int64, error) {
	return execPlan(ctx, s.db, plan)
}

// Query runs a read plan and returns all result rows in the plan's declared
// output-column order.
func (s *Store) Query(ctx context.Context, plan datalog.Plan) ([][]any, error) {
	return queryPlan(ctx, s.db, plan)
}

// Select projects the named variables, in the caller's order, from a query's
// result. Every variable must be in the query's output set.
func (s *Store) Select(ctx context.Context, vars []datalog.Var, q datalog.Query) ([][]any, error) {
	return selectVars(ctx, s.db, vars, q)
}

func execPlan(ctx context.Context, q querier, plan datalog.Plan) (int64, error) {
	result, err := q.ExecContext(ctx, plan.Text, plan.Params...)
	if err != nil {
		return 0, fmt.Errorf("exec plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec plan: rows affected: %w", err)
	}
	return n, nil
}

func queryPlan(ctx context.Context, q querier, plan datalog.Plan) ([][]any, error) {
	rows, err := q.QueryContext(ctx, plan.Text, plan.Params...)
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func selectVars(ctx context.Context, q querier, vars []datalog.Var, query datalog.Query) ([][]any, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("select: no variables given")
	}
	cols := query.Cols()
	names := make([]string, len(vars))
	for i, v := range vars {
		found := false
		for _, c := range cols {
			if c == v {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("select: variable %q not in query output", v)
		}
		names[i] = string(v)
	}

	plan := query.Plan()
	text := fmt.Sprintf("SELECT %s FROM (%s)", strings.Join(names, ", "), plan.Text)
	rows, err := q.QueryContext(ctx, text, plan.Params...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows drains a result set into generic value rows.
func scanRows(rows *sql.Rows) ([][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, vals)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = [][]any{}
	}

	return out, nil
}
