package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mik629/ktorm/internal/store"
	"github.com/mik629/ktorm/internal/testutil"
)

func TestExecCommand_CreatesSchema(t *testing.T) {
	db := filepath.Join(t.TempDir(), "company.db")
	script := writeFile(t, "schema.sql", testutil.Schema)

	stdout, _, err := execute(NewRootCommand(), "exec", "--db", db, script)
	require.NoError(t, err)
	assert.Equal(t, "✓ Executed "+script+"\n", stdout)

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	var n int
	err = s.DB().QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('departments', 'employees')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExecCommand_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "company.db")
	script := writeFile(t, "schema.sql", testutil.Schema)

	stdout, _, err := execute(NewRootCommand(), "--format", "json", "exec", "--db", db, script)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, script, resp.Data["file"])
	assert.Equal(t, db, resp.Data["database"])
}

func TestExecCommand_ScriptFailure(t *testing.T) {
	db := filepath.Join(t.TempDir(), "company.db")
	script := writeFile(t, "broken.sql", "CREATE TABLE (;")

	stdout, _, err := execute(NewRootCommand(), "exec", "--db", db, script)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E008]")
	assert.Contains(t, stdout, "exec script")
}

func TestExecCommand_MissingScript(t *testing.T) {
	db := filepath.Join(t.TempDir(), "company.db")

	stdout, _, err := execute(NewRootCommand(), "exec", "--db", db, "missing.sql")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}

func TestExecCommand_RequiresDatabaseFlag(t *testing.T) {
	script := writeFile(t, "schema.sql", testutil.Schema)

	_, _, err := execute(NewRootCommand(), "exec", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
