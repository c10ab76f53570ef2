package facts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func loadJSON(filename string) (*Rowset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse JSON from %s: %w (expected array of objects)", filename, err)
	}

	return buildRowset(records), nil
}

func loadJSONL(filename string) (*Rowset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var records []map[string]any
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	return buildRowset(records), nil
}

// buildRowset flattens keyed records into columns: every key seen in any
// record becomes a column, and keys absent from a record produce nulls.
// Column order is unspecified; Align matches columns by name.
func buildRowset(records []map[string]any) *Rowset {
	rs := &Rowset{}
	if len(records) == 0 {
		return rs
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				rs.Columns = append(rs.Columns, k)
			}
		}
	}

	for _, rec := range records {
		row := make([]any, len(rs.Columns))
		for i, col := range rs.Columns {
			v, ok := rec[col]
			if !ok || v == nil {
				continue
			}
			row[i] = jsonValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case float64:
		// JSON numbers decode as float64; keep whole ones integral.
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case string:
		return val
	case bool:
		return val
	default:
		// Nested objects and arrays are stored as their JSON text.
		b, _ := json.Marshal(val)
		return string(b)
	}
}
