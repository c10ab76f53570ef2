package harness

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders a scenario result as deterministic text: the
// program fingerprint, each run's outcome with relation counts in
// sorted name order, each query's rows in sorted rendered order, and
// any expectation failures. Golden files hold exactly these bytes.
func Transcript(scenarioName string, result *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", scenarioName)
	fmt.Fprintf(&buf, "fingerprint: %s\n", result.Fingerprint)

	for _, run := range result.Runs {
		fmt.Fprintf(&buf, "\nrun %s\n", run.Token)
		if run.Err != "" {
			fmt.Fprintf(&buf, "  error: %s\n", run.Err)
			continue
		}
		fmt.Fprintf(&buf, "  rounds: %d\n", run.Rounds)
		fmt.Fprintf(&buf, "  derived: %d\n", run.Derived)

		names := make([]string, 0, len(run.Counts))
		for name := range run.Counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&buf, "  count %s: %d\n", name, run.Counts[name])
		}
	}

	for _, q := range result.Queries {
		fmt.Fprintf(&buf, "\nquery %s: %s\n", q.Name, q.Text)
		fmt.Fprintf(&buf, "  columns: (%s)\n", strings.Join(q.Vars, ", "))

		lines := make([]string, len(q.Rows))
		for i, row := range q.Rows {
			lines[i] = renderRow(row)
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	if len(result.Errors) > 0 {
		buf.WriteByte('\n')
		for _, msg := range result.Errors {
			fmt.Fprintf(&buf, "error: %s\n", msg)
		}
	}

	return buf.Bytes()
}

func renderRow(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = renderValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			// Keep whole floats distinct from integers.
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(val)
	case []byte:
		return strconv.Quote(string(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RunWithGolden executes a scenario and compares its transcript against
// the golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; a transcript mismatch
// fails the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Transcript(scenario.Name, result))

	return nil
}

// AssertGolden compares an already-obtained result's transcript against
// a golden file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Transcript(scenarioName, result))
}
