package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mik629/ktorm/internal/store"
	"github.com/mik629/ktorm/internal/testutil"
)

const highEarners = `from: employees
alias: e
columns:
  - column: e.name
  - column: e.salary
where:
  - {column: e.salary, op: ">", value: 200}
  - {column: e.job, op: in, value: [engineer, seller]}
order_by:
  - {column: e.salary, desc: true}
limit: 3
`

// seedDatabase creates the employee fixture database and returns its path.
func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, testutil.Seed(context.Background(), s))
	require.NoError(t, s.Close())
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
