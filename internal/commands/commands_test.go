package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CALTERM_CONFIG_PATH", filepath.Join(dir, "config"))
	t.Setenv("CALTERM_STORAGE", "diskv")
	t.Setenv("CALTERM_DATA_PATH", filepath.Join(dir, "data"))
	t.Setenv("CALTERM_START_MONTH", "2024-12")
	t.Setenv("CALTERM_TIMEZONE", "UTC")
	t.Setenv("CALTERM_LOG_FILE", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListPrintsDefaultMonth(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "list")

	require.NoError(t, err)
	assert.Contains(t, out, "December 2024")
	assert.Contains(t, out, "2024-12-09")
	assert.Contains(t, out, "jon returns")
	assert.Contains(t, out, "2nd event")
	assert.Contains(t, out, "Personal")
}

func TestListFilters(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "list", "--search", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "none")
	assert.NotContains(t, out, "jon returns")

	out, err = run(t, "list", "--month", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "January 2025")
	assert.Contains(t, out, "none")

	_, err = run(t, "list", "--month", "December")
	assert.Error(t, err)
}

func TestImportExportAndReset(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "events.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,title,time,category\n2024-12-24,Dinner,19:30,personal\n2024-12-25,,,work\n"), 0o644))

	out, err := run(t, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 events")
	assert.Contains(t, out, "row 3: title required")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dinner")

	icsPath := filepath.Join(dir, "calendar.ics")
	_, err = run(t, "export", "--out", icsPath)
	require.NoError(t, err)
	raw, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SUMMARY:Dinner")

	out, err = run(t, "export", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-12-24,Dinner,19:30,personal,")

	_, err = run(t, "reset")
	assert.Error(t, err)
	out, err = run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Calendar reset.")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Dinner")
	assert.Contains(t, out, "jon returns")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "export", "--format", "xml")
	assert.EqualError(t, err, `unknown format "xml", want ics or csv`)
}

func TestRootNeedsTerminal(t *testing.T) {
	setupEnv(t)
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		t.Skip("running attached to a terminal")
	}
	_, err := run(t)
	assert.ErrorIs(t, err, errNoTerminal)
}
