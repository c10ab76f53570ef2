package facts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/linkedin/goavro/v2"
)

func loadAvro(filename string) (*Rowset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("read Avro OCF from %s: %w", filename, err)
	}

	// Column order comes from the writer schema, not from record maps.
	var schemaDef struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schemaDef); err != nil {
		return nil, fmt.Errorf("parse Avro schema: %w", err)
	}

	rs := &Rowset{Columns: make([]string, len(schemaDef.Fields))}
	for i, field := range schemaDef.Fields {
		rs.Columns[i] = field.Name
	}

	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("read Avro record: %w", err)
		}
		rec, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}

		row := make([]any, len(rs.Columns))
		for i, col := range rs.Columns {
			v, exists := rec[col]
			if !exists || v == nil {
				continue
			}
			row[i] = avroValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("read Avro file %s: %w", filename, err)
	}

	return rs, nil
}

func avroValue(v any) any {
	switch val := v.(type) {
	case int32:
		return int64(val)
	case int64:
		return val
	case float32:
		return float64(val)
	case float64:
		return val
	case string:
		return val
	case bool:
		return val
	case []byte:
		return string(val)
	case map[string]any:
		// Unions decode as {"type": value}. Unwrap the value.
		for _, inner := range val {
			return avroValue(inner)
		}
		return nil
	default:
		return fmt.Sprintf("%v", val)
	}
}
