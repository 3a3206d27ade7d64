package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mik629/ktorm/internal/querydef"
	"github.com/mik629/ktorm/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	CountOnly bool
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Columns      []string         `json:"columns,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	TotalRecords int              `json:"total_records"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Run a query definition against a database",
		Long: `Run a query definition against a SQLite database.

Prints the rows of the query (one page when the definition paginates)
and the total number of matching records ignoring pagination. Use
--verbose to log every executed statement with its parameters.

Example:
  ktorm run --db ./company.db ./queries/high_earners.yaml
  ktorm run --db ./company.db --count-only ./queries/headcount.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.CountOnly, "count-only", false, "print only the total record count")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *RunOptions, path string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	def, err := querydef.Load(path)
	if err != nil {
		return queryFailure(formatter, err)
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return failure(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return failure(formatter, ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	q, err := querydef.Build(st, def)
	if err != nil {
		return queryFailure(formatter, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.CountOnly {
		total, err := q.TotalRecords(ctx)
		if err != nil {
			return queryFailure(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(RunResult{TotalRecords: total})
		}
		fmt.Fprintf(formatter.Writer, "total_records: %d\n", total)
		return nil
	}

	rs, err := q.RowSet(ctx)
	if err != nil {
		return queryFailure(formatter, err)
	}
	total, err := q.TotalRecords(ctx)
	if err != nil {
		return queryFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunResult{
			Columns:      rs.Columns(),
			Rows:         rowMaps(rs),
			TotalRecords: total,
		})
	}

	formatter.Table(rs)
	fmt.Fprintf(formatter.Writer, "total_records: %d\n", total)
	return nil
}
