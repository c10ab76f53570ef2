package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end program test: the program to submit,
// the runs to perform against a fresh database, and the queries whose
// results go into the transcript.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// Program is the path to the CUE program file or directory.
	Program string `yaml:"program"`

	// MaxRounds overrides the engine's round limit when positive.
	MaxRounds int `yaml:"max_rounds,omitempty"`

	// Runs lists the program submissions, in order. Each run sees the
	// state committed by the runs before it.
	Runs []RunStep `yaml:"runs"`

	// Queries run after the last run and capture derived tuples.
	Queries []QueryStep `yaml:"queries,omitempty"`
}

// RunStep is one engine submission with its expected outcome.
type RunStep struct {
	// Token is the fixed run token recorded in provenance. If empty it
	// defaults to "<scenario>-run-<n>" so resubmissions stay
	// distinguishable.
	Token string `yaml:"token,omitempty"`

	// Expect checks the run outcome. Nil means the run only has to
	// succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies a run's expected outcome. Unset fields are not
// checked.
type ExpectClause struct {
	// Rounds is the expected number of rule rounds.
	Rounds *int `yaml:"rounds,omitempty"`

	// Derived is the expected number of rule-inserted rows.
	Derived *int64 `yaml:"derived,omitempty"`

	// Counts maps relation names to expected final row counts.
	Counts map[string]int64 `yaml:"counts,omitempty"`

	// Error expects the run to fail with this substring in its error
	// text. Excludes the other expectations.
	Error string `yaml:"error,omitempty"`
}

// QueryStep is one query to run after the runs complete.
type QueryStep struct {
	// Name labels the query in the transcript.
	Name string `yaml:"name"`

	// Query is body-grammar query text, e.g. "path(1, z)".
	Query string `yaml:"query"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file does not exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative program path against basePath. Useful when
// scenario files reference their program with a path relative to the
// scenario's own directory.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the program path before validation checks its existence.
	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) && basePath != "" {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Program == "" {
		return fmt.Errorf("program is required")
	}

	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program not found: %s", s.Program)
	}

	if s.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must be non-negative")
	}

	if len(s.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	for i, step := range s.Runs {
		if step.Expect == nil {
			continue
		}
		if step.Expect.Error != "" {
			if step.Expect.Rounds != nil || step.Expect.Derived != nil || len(step.Expect.Counts) > 0 {
				return fmt.Errorf("runs[%d].expect: error excludes rounds, derived, and counts", i)
			}
		}
	}

	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if q.Query == "" {
			return fmt.Errorf("queries[%d]: query is required", i)
		}
	}

	return nil
}
