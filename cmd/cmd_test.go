package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func TestItemCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OULPAN_LOG_FILE", filepath.Join(dir, "oulpan.log"))
	db := filepath.Join(dir, "oulpan.db")

	out, err := execute(t, "add", "bread", "lechem", "--tag", "food", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1")

	_, err = execute(t, "add", "  Bread ", "pita", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in the list")

	_, err = execute(t, "add", "water", "mayim", "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "bread")
	assert.Contains(t, out, "mayim")
	assert.Contains(t, out, "food")

	out, err = execute(t, "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Items:     2")

	out, err = execute(t, "delete", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted #1")

	_, err = execute(t, "delete", "1", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, err = execute(t, "reset", "--all", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 items.")
}

func TestInvalidPolicyFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OULPAN_LOG_FILE", filepath.Join(dir, "oulpan.log"))

	_, err := execute(t, "stats", "--db", filepath.Join(dir, "x.db"), "--policy", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--policy")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oulpan (devel)")
}
