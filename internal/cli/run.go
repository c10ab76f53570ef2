package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/datalite/internal/engine"
	"github.com/roach88/datalite/internal/program"
	"github.com/roach88/datalite/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	MaxRounds int

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens engine.TokenGenerator
}

// RunSummary is the run command's output payload.
type RunSummary struct {
	Token       string           `json:"token"`
	Fingerprint string           `json:"fingerprint"`
	Rounds      int              `json:"rounds"`
	Derived     int64            `json:"derived"`
	Counts      map[string]int64 `json:"counts"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program against a database",
		Long: `Run a Datalog program against a SQLite database.

Loads the program (a .cue file or a directory of CUE files), validates
it, and executes one run: create relations, insert facts, apply rules
to fixpoint. The run commits atomically and records provenance; on any
failure the database keeps its pre-run state.

Resubmitting the same program is idempotent for distinct relations and
additive for bag relations.

Example:
  datalite run --db ./app.db program.cue
  datalite run --db ./app.db ./programs --max-rounds 128 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.MaxRounds, "max-rounds", engine.DefaultMaxRounds, "maximum rule rounds before a run is abandoned")

	return cmd
}

func runProgram(opts *RunOptions, programPath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	// Load program
	slog.Debug("loading program", "path", programPath)
	prog, loadErrs := program.Load(programPath, program.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load program", errors.Join(loadErrs...))
	}

	// Open database (create if not exists)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// Create engine with token generator (default to UUIDv7)
	tokens := opts.Tokens
	if tokens == nil {
		tokens = engine.UUIDv7Generator{}
	}
	eng := engine.New(st, tokens, engine.WithMaxRounds(opts.MaxRounds))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := eng.Run(ctx, prog)
	if err != nil {
		// Validation and convergence failures both leave the database
		// untouched; either way the run itself failed.
		return WrapExitError(ExitFailure, "run failed", err)
	}

	summary := RunSummary{
		Token:       res.Token,
		Fingerprint: res.Fingerprint,
		Rounds:      res.Rounds,
		Derived:     res.Derived,
		Counts:      res.Counts,
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, summary)
	}
	return outputRunText(cmd, summary)
}

// outputRunJSON outputs the run summary as JSON.
func outputRunJSON(cmd *cobra.Command, summary RunSummary) error {
	response := CLIResponse{
		Status: "ok",
		Data:   summary,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputRunText outputs the run summary as text.
func outputRunText(cmd *cobra.Command, summary RunSummary) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run complete: %s\n", summary.Token)
	fmt.Fprintf(w, "  Fingerprint: %s\n", summary.Fingerprint)
	fmt.Fprintf(w, "  Rounds:      %d\n", summary.Rounds)
	fmt.Fprintf(w, "  Derived:     %d\n", summary.Derived)

	if len(summary.Counts) > 0 {
		fmt.Fprintln(w, "  Relations:")
		names := make([]string, 0, len(summary.Counts))
		for name := range summary.Counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "    %s: %d row(s)\n", name, summary.Counts[name])
		}
	}

	return nil
}
