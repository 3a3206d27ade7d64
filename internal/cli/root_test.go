package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ktorm", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sql", "run", "exec", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	require.NotNil(t, runCmd.Flags().Lookup("db"))
	countOnly := runCmd.Flags().Lookup("count-only")
	require.NotNil(t, countOnly)
	assert.Equal(t, "false", countOnly.DefValue)
}

func TestSQLCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sqlCmd, _, err := cmd.Find([]string{"sql"})
	require.NoError(t, err)

	assert.NotNil(t, sqlCmd.Flags().Lookup("count"))
	assert.Nil(t, sqlCmd.Flags().Lookup("db"), "rendering needs no database")
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "sql", "query.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
