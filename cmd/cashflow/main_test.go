package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/cashflow/internal/logging"
)

// withConfig points the loader at a config file inside a temp dir.
func withConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfgPath := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[database]\npath = %q\n\n[log]\nfile = %q\n\n[ui]\ntimezone = \"UTC\"\n",
		filepath.Join(dir, "data", "cashflow.db"), filepath.Join(dir, "cashflow.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	t.Setenv("CASHFLOW_CONFIG", cfgPath)
	t.Cleanup(func() { logging.Configure("") })
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateAndSeed(t *testing.T) {
	withConfig(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema version")
	require.Contains(t, out, "dirty=false")

	out, err = run(t, "seed")
	require.NoError(t, err)
	require.Contains(t, out, "defaults seeded")

	out, err = run(t, "seed", "--demo", "5")
	require.NoError(t, err)
	require.Contains(t, out, "added 5 demo transactions")
}

func TestImportCommandSkipsRepeats(t *testing.T) {
	dir := withConfig(t)
	csvPath := filepath.Join(dir, "bank.csv")
	rows := "2026-10-01,-12.50,Lunch,Personal,Restaurants\n2026-10-02,2000,Salary,Personal,Salary\nnot-a-date,1,x,Personal\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(rows), 0o644))

	out, err := run(t, "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2, skipped 0")
	require.Contains(t, out, "line 3 date")

	out, err = run(t, "import", csvPath)
	require.NoError(t, err)
	require.Contains(t, out, "imported 0, skipped 2")

	_, err = run(t, "import", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	_, err = run(t, "import")
	require.Error(t, err)
}

func TestResetNeedsConfirmation(t *testing.T) {
	_, err := run(t, "reset")
	require.ErrorContains(t, err, "--yes")

	dir := withConfig(t)
	_, err = run(t, "seed")
	require.NoError(t, err)

	out, err := run(t, "reset", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "database reset")
	require.FileExists(t, filepath.Join(dir, "data", "categories.json"))

	out, err = run(t, "seed", "--restore")
	require.NoError(t, err)
	require.Contains(t, out, "restored 22 categories")
}
