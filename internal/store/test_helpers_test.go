package store

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/roach88/datalite/internal/datalog"
)

// createTestStore creates a new store backed by a temp-dir database file.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// edgeRelation returns the bag relation edge(src, dst) used as base facts.
func edgeRelation() *datalog.Relation {
	return datalog.NewRelation("edge",
		datalog.Column{Name: "src", Type: "INTEGER"},
		datalog.Column{Name: "dst", Type: "INTEGER"},
	)
}

// pathRelation returns the set relation path(src, dst) used as a rule head.
func pathRelation() *datalog.Relation {
	return datalog.NewRelationSet("path",
		datalog.Column{Name: "src", Type: "INTEGER"},
		datalog.Column{Name: "dst", Type: "INTEGER"},
	)
}

// seedGraph creates edge and fills it with the given (src, dst) rows.
func seedGraph(t *testing.T, s *Store, rows [][]any) *datalog.Relation {
	t.Helper()
	ctx := context.Background()
	edge := edgeRelation()
	if err := s.CreateRelation(ctx, edge); err != nil {
		t.Fatalf("CreateRelation(edge) failed: %v", err)
	}
	if err := s.InsertRows(ctx, edge, rows); err != nil {
		t.Fatalf("InsertRows(edge) failed: %v", err)
	}
	return edge
}

// intPairs converts scanned two-column rows into sorted (int64, int64) pairs.
func intPairs(t *testing.T, rows [][]any) [][2]int64 {
	t.Helper()
	out := make([][2]int64, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			t.Fatalf("row %d has %d columns, want 2", i, len(row))
		}
		a, ok := row[0].(int64)
		if !ok {
			t.Fatalf("row %d column 0 is %T, want int64", i, row[0])
		}
		b, ok := row[1].(int64)
		if !ok {
			t.Fatalf("row %d column 1 is %T, want int64", i, row[1])
		}
		out[i] = [2]int64{a, b}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}
