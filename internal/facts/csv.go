package facts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func loadCSV(filename string) (*Rowset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header from %s: %w", filename, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	rs := &Rowset{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		row := make([]any, len(columns))
		for i := range columns {
			if i < len(record) {
				row[i] = parseValue(strings.TrimSpace(record[i]))
			}
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, nil
}

// parseValue infers the type of a CSV cell: null, integer, float,
// boolean, then string.
func parseValue(s string) any {
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}

	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	return s
}
