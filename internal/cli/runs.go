package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunRecord is one provenance row in the runs command's output.
type RunRecord struct {
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint"`
	Rounds      int    `json:"rounds"`
	Derived     int64  `json:"derived"`
	CreatedAt   string `json:"created_at"`
}

// RunsResult holds the runs command's output payload.
type RunsResult struct {
	Runs  []RunRecord `json:"runs"`
	Total int         `json:"total"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the run provenance recorded in a database.

Each run shows its token, the fingerprint of the program that ran, the
rounds it took, and the rows it derived. Equal fingerprints mean the
same program ran, regardless of source formatting.

Example:
  datalite runs --db ./app.db
  datalite runs --db ./app.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	records := make([]RunRecord, len(runs))
	for i, run := range runs {
		records[i] = RunRecord{
			Token:       run.Token,
			Fingerprint: run.Fingerprint,
			Rounds:      run.Rounds,
			Derived:     run.Derived,
			CreatedAt:   run.CreatedAt,
		}
	}

	result := RunsResult{Runs: records, Total: len(records)}

	if opts.Format == "json" {
		return outputRunsJSON(cmd, result)
	}
	return outputRunsText(cmd, result)
}

// outputRunsJSON outputs the run list as JSON.
func outputRunsJSON(cmd *cobra.Command, result RunsResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputRunsText outputs the run list as a table.
func outputRunsText(cmd *cobra.Command, result RunsResult) error {
	w := cmd.OutOrStdout()

	if result.Total == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-38s %-12s %7s %8s  %s\n", "TOKEN", "FINGERPRINT", "ROUNDS", "DERIVED", "CREATED")
	for _, run := range result.Runs {
		fmt.Fprintf(w, "%-38s %-12s %7d %8d  %s\n",
			run.Token, shortFingerprint(run.Fingerprint), run.Rounds, run.Derived, run.CreatedAt)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", result.Total)

	return nil
}

// shortFingerprint truncates a fingerprint for table display. The full
// value is always available with --format json.
func shortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
