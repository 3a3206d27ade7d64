package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mik629/ktorm/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Database string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <sql-file>",
		Short: "Execute a SQL script against a database",
		Long: `Execute a SQL script, such as a schema or seed file, against a SQLite
database. The database is created if it does not exist.

Example:
  ktorm exec --db ./company.db ./schema.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, path string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	script, err := os.ReadFile(path)
	if err != nil {
		return failure(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("failed to read script: %v", err), nil)
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slog.Debug("executing script", "file", path, "db", opts.Database, "bytes", len(script))
	if err := st.ExecScript(ctx, string(script)); err != nil {
		return failure(formatter, ExitFailure, ErrCodeDatabase, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"file": path, "database": opts.Database})
	}
	fmt.Fprintf(formatter.Writer, "✓ Executed %s\n", path)
	return nil
}
