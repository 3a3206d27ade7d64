package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mik629/ktorm/internal/dsl"
	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/querydef"
	"github.com/mik629/ktorm/internal/querysql"
	"github.com/mik629/ktorm/internal/rowset"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Count bool
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <query-file>",
		Short: "Render a query definition as SQL",
		Long: `Render a query definition as beautified SQL with its bound parameters.

No database is opened. With --count the statement used to count the
query's total records is rendered instead.

Example:
  ktorm sql ./queries/high_earners.yaml
  ktorm sql --count --format json ./queries/headcount.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Count, "count", false, "render the total-records count statement")

	return cmd
}

func runSQL(opts *SQLOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	def, err := querydef.Load(path)
	if err != nil {
		return queryFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded query definition from %s", path)

	db := newOfflineDatabase()
	q, err := querydef.Build(db, def)
	if err != nil {
		return queryFailure(formatter, err)
	}

	if opts.Count {
		count, err := expr.ToCountExpression(q.Expression())
		if err != nil {
			return queryFailure(formatter, err)
		}
		q = dsl.NewQuery(db, count)
	}

	sql, params, err := q.SQL()
	if err != nil {
		return queryFailure(formatter, err)
	}
	if params == nil {
		params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(SQLResult{SQL: sql, Params: params})
	}

	fmt.Fprintln(formatter.Writer, sql)
	if len(params) > 0 {
		fmt.Fprintf(formatter.Writer, "-- params: %v\n", params)
	}
	return nil
}

// errNoDatabase is returned when a query is executed without --db.
var errNoDatabase = errors.New("no database connection")

// offlineDatabase renders queries without a database connection.
type offlineDatabase struct {
	compact *querysql.SQLCompiler
	pretty  *querysql.SQLCompiler
}

func newOfflineDatabase() *offlineDatabase {
	pretty := querysql.NewSQLCompiler()
	pretty.Beautify = true
	return &offlineDatabase{compact: querysql.NewSQLCompiler(), pretty: pretty}
}

func (d *offlineDatabase) FormatExpression(q expr.QueryExpression, beautify bool) (string, []any, error) {
	if beautify {
		return d.pretty.Compile(q)
	}
	return d.compact.Compile(q)
}

func (d *offlineDatabase) ExecuteQuery(ctx context.Context, q expr.QueryExpression) (*rowset.RowSet, error) {
	return nil, errNoDatabase
}
