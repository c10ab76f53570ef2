package harness

// RunReport captures the observable outcome of one engine run.
type RunReport struct {
	Token   string
	Rounds  int
	Derived int64
	Counts  map[string]int64

	// Err holds the failure text for a run that was expected to fail.
	// The other fields are zero when set; the run left no state behind.
	Err string
}

// QueryReport holds the rows one scenario query produced after all
// runs completed. Vars lists the projected variables in column order.
type QueryReport struct {
	Name string
	Text string
	Vars []string
	Rows [][]any
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true while every expectation holds.
	Pass bool

	// Fingerprint identifies the program the scenario ran.
	Fingerprint string

	// Runs holds one report per run step, in execution order.
	Runs []RunReport

	// Queries holds one report per query step, in declaration order.
	Queries []QueryReport

	// Errors lists expectation failures. Empty when Pass is true.
	Errors []string
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records an expectation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
