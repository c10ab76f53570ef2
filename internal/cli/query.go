package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datalite/internal/datalog"
	"github.com/roach88/datalite/internal/program"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database string
}

// QueryResult holds the query command's output payload.
type QueryResult struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Count   int      `json:"count"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run an ad hoc query against a database",
		Long: `Run an ad hoc query against an existing database.

The query uses the rule body grammar: relation atoms joined with & and
|. Relations are rebuilt from the database's own schema, so no program
file is needed. Variables project columns; constants filter rows.

Example:
  datalite query --db ./app.db 'path(x, z)'
  datalite query --db ./app.db 'edge(1, y) & path(y, z)' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryOptions, queryText string, cmd *cobra.Command) error {
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
	if len(rels) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no relations in database: %s", opts.Database))
	}

	relations := make(map[string]*datalog.Relation, len(rels))
	for _, rel := range rels {
		relations[rel.Name()] = rel
	}

	bound := &program.Bound{Relations: relations}
	q, err := bound.CompileQuery(queryText)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid query", err)
	}

	rows, err := st.Query(ctx, q.Plan())
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}
	if rows == nil {
		rows = [][]any{}
	}

	// Rows print in sorted order, so repeated invocations of the same
	// query render identically.
	sort.Slice(rows, func(i, j int) bool {
		return formatRow(rows[i]) < formatRow(rows[j])
	})

	vars := q.Cols()
	columns := make([]string, len(vars))
	for i, v := range vars {
		columns[i] = string(v)
	}

	result := QueryResult{
		Query:   queryText,
		Columns: columns,
		Rows:    rows,
		Count:   len(rows),
	}

	if opts.Format == "json" {
		return outputQueryJSON(cmd, result)
	}
	return outputQueryText(cmd, result)
}

// outputQueryJSON outputs the query result as JSON.
func outputQueryJSON(cmd *cobra.Command, result QueryResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputQueryText outputs the query result as text.
func outputQueryText(cmd *cobra.Command, result QueryResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "(%s)\n", strings.Join(result.Columns, ", "))
	for _, row := range result.Rows {
		fmt.Fprintln(w, formatRow(row))
	}
	fmt.Fprintf(w, "%d row(s)\n", result.Count)

	return nil
}

// formatRow renders one result row as a parenthesized tuple.
func formatRow(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = formatScalar(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatScalar renders one cell. Strings are quoted so "1" stays
// distinguishable from 1, and whole floats keep a trailing .0 for the
// same reason.
func formatScalar(v any) string {
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
