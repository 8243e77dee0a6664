package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sqlnest/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeQuery(t *testing.T, dir, name, sql string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

const sampleQuery = `with a as (select * from base)
select * from a t1`

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"rewrite", "deps", "watch", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRewriteToStdout(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	path := writeQuery(t, tmpDir, "query.sql", sampleQuery)

	out, err := runCLI(t, "rewrite", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, "select *\nfrom (\n  select *\n  from base\n  ) t1\n", out)
}

func TestRewriteWritesCompanionFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	path := writeQuery(t, tmpDir, "query.sql", sampleQuery)

	_, err := runCLI(t, "rewrite", path)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(tmpDir, "query_nested.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from base")
}

func TestRewriteHonorsSuffixFlag(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	path := writeQuery(t, tmpDir, "query.sql", sampleQuery)

	_, err := runCLI(t, "rewrite", "--suffix", "_inline", path)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "query_inline.sql"))
	assert.NoError(t, err)
}

func TestRewriteReportsCycle(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	path := writeQuery(t, tmpDir, "cyclic.sql", `with a as (select * from b x),
b as (select * from a y)
select * from a t1`)

	_, err := runCLI(t, "rewrite", "--stdout", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle among CTE definitions")
}

func TestDepsJSON(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	path := writeQuery(t, tmpDir, "query.sql", `with a as (select * from base),
b as (select * from a x)
select * from b t1`)

	out, err := runCLI(t, "deps", "--output", "json", path)
	require.NoError(t, err)

	var payload struct {
		CTEs []struct {
			Name       string   `json:"name"`
			References []string `json:"references"`
		} `json:"ctes"`
		Levels [][]string `json:"levels"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.CTEs, 2)
	assert.Equal(t, "a", payload.CTEs[0].Name)
	assert.Equal(t, []string{"a"}, payload.CTEs[1].References)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, payload.Levels)
}

func TestVersionCommand(t *testing.T) {
	chdir(t, t.TempDir())
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlnest v")
}

func TestInvalidFlagValueFailsEarly(t *testing.T) {
	chdir(t, t.TempDir())
	out, err := runCLI(t, "--indent", "99", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indent must be between")
	assert.Empty(t, out)
}
