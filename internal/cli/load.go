package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/datalite/internal/datalog"
	"github.com/roach88/datalite/internal/facts"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
	Relation string
}

// LoadSummary is the load command's output payload.
type LoadSummary struct {
	File     string `json:"file"`
	Relation string `json:"relation"`
	Rows     int    `json:"rows"`
	Total    int64  `json:"total"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fact-file>",
		Short: "Bulk-load facts from a file",
		Long: `Bulk-load facts from a file into one relation.

Supported formats, chosen by extension: .csv (header row with typed
cell inference), .json (array of objects), .jsonl, and .avro (OCF).
Source columns are matched to the relation's columns by name; extra
source columns are dropped.

Loading into a distinct relation drops duplicate tuples silently, so
reloading the same file changes nothing. Bag relations accumulate.

Example:
  datalite load --db ./app.db -r edge edges.csv
  datalite load --db ./app.db -r readings sensors.avro`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVarP(&opts.Relation, "relation", "r", "", "target relation (required)")
	_ = cmd.MarkFlagRequired("relation")

	return cmd
}

func runLoad(opts *LoadOptions, factFile string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	rels, err := st.Relations(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read schema", err)
	}

	var rel *datalog.Relation
	for _, r := range rels {
		if r.Name() == opts.Relation {
			rel = r
			break
		}
	}
	if rel == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("relation %q not found in %s", opts.Relation, opts.Database))
	}

	rowset, err := facts.Load(factFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read fact file", err)
	}

	rows, err := rowset.Align(rel)
	if err != nil {
		return WrapExitError(ExitFailure, "fact file does not fit relation", err)
	}

	if err := st.InsertRows(ctx, rel, rows); err != nil {
		return WrapExitError(ExitFailure, "failed to insert rows", err)
	}

	total, err := st.Count(ctx, rel)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count rows", err)
	}

	summary := LoadSummary{
		File:     factFile,
		Relation: opts.Relation,
		Rows:     len(rows),
		Total:    total,
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(summary)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d row(s) from %s into %s (%d total)\n",
		summary.Rows, summary.File, summary.Relation, summary.Total)
	return nil
}
