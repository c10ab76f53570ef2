package facts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/datalite/internal/datalog"
)

// Rowset is column-named tabular data read from a fact file, not yet
// tied to any relation. Values are the scalar forms the store accepts:
// nil, bool, int64, float64, and string.
type Rowset struct {
	Columns []string
	Rows    [][]any
}

// Load reads a fact file and returns its rows. The format is chosen by
// extension: .csv, .json (array of objects), .jsonl, or .avro.
func Load(filename string) (*Rowset, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return loadCSV(filename)
	case ".json":
		return loadJSON(filename)
	case ".jsonl":
		return loadJSONL(filename)
	case ".avro":
		return loadAvro(filename)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .csv, .json, .jsonl, .avro)", ext)
	}
}

// Align reorders the rowset's columns to the relation's declared order,
// producing rows ready for insertion. Every relation column must be
// present in the rowset; extra rowset columns are dropped. An empty
// rowset aligns to zero rows whatever its columns.
func (r *Rowset) Align(rel *datalog.Relation) ([][]any, error) {
	if len(r.Rows) == 0 {
		return [][]any{}, nil
	}

	idx := make(map[string]int, len(r.Columns))
	for i, c := range r.Columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}

	cols := rel.Columns()
	order := make([]int, len(cols))
	for i, c := range cols {
		j, ok := idx[c.Name]
		if !ok {
			return nil, fmt.Errorf("align %s: source has no column %q", rel.Name(), c.Name)
		}
		order[i] = j
	}

	out := make([][]any, len(r.Rows))
	for n, row := range r.Rows {
		vals := make([]any, len(order))
		for i, j := range order {
			if j < len(row) {
				vals[i] = row[j]
			}
		}
		out[n] = vals
	}
	return out, nil
}
