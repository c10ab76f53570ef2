// Package harness runs end-to-end program scenarios for conformance
// and regression testing.
//
// A scenario names a CUE program, submits it to the engine one or more
// times against a fresh database, and checks each run's observable
// outcome: rounds until convergence, rows derived, final per-relation
// counts. Queries executed after the runs capture derived tuples, and
// the whole result renders as a text transcript compared against golden
// files.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: transitive_closure
//	description: "Resubmission reaches and holds fixpoint"
//	program: ../programs/closure.cue
//	runs:
//	  - token: closure-1
//	    expect:
//	      rounds: 5
//	      derived: 11
//	      counts: {edge: 5, path: 11}
//	  - token: closure-2
//	    expect:
//	      rounds: 1
//	      derived: 0
//	queries:
//	  - name: all_paths
//	    query: "path(x, z)"
//
// A run step may instead expect failure, matched as an error substring:
//
//	max_rounds: 2
//	runs:
//	  - token: runaway-1
//	    expect:
//	      error: "exceeded max rounds"
//
// # Deterministic Execution
//
// Every scenario runs against a fresh in-memory database with fixed run
// tokens, so repeated executions produce identical transcripts. Query
// rows render in sorted order, making the transcript independent of
// scan order. Golden files hold the exact transcript bytes; regenerate
// them with:
//
//	go test ./internal/harness -update
package harness
