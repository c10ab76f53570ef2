package store

import (
	"context"
	"fmt"

	"github.com/roach88/datalite/internal/datalog"
)

// Relations rebuilds relation handles from the database's own schema, so
// ad-hoc queries can bind against an existing database without a program
// definition. A table whose every column is part of the primary key is a
// set-semantics (distinct) relation; anything else is a bag.
//
// Metadata tables, SQLite internals, and tables whose names or columns are
// not plain identifiers are skipped: they cannot have been created from a
// relation schema.
func (s *Store) Relations(ctx context.Context) ([]*datalog.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		  AND name NOT LIKE 'datalite_%'
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	rels := make([]*datalog.Relation, 0, len(names))
	for _, name := range names {
		rel, err := s.introspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if rel != nil {
			rels = append(rels, rel)
		}
	}

	return rels, nil
}

// introspectTable rebuilds one relation from PRAGMA table_info.
// Returns (nil, nil) for tables that cannot be relations.
func (s *Store) introspectTable(ctx context.Context, name string) (*datalog.Relation, error) {
	if !datalog.ValidIdent(name) {
		return nil, nil
	}

	// PRAGMA does not accept bound parameters; name is a validated identifier.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", name))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", name, err)
	}
	defer rows.Close()

	var cols []datalog.Column
	allKeyed := true
	for rows.Next() {
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("table_info %s: scan: %w", name, err)
		}
		if !datalog.ValidIdent(colName) {
			return nil, nil
		}
		cols = append(cols, datalog.Column{Name: colName, Type: colType})
		if pk == 0 {
			allKeyed = false
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table_info %s: iterate: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, nil
	}

	if allKeyed {
		return datalog.NewRelationSet(name, cols...), nil
	}
	return datalog.NewRelation(name, cols...), nil
}
