package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/todo"
)

// run invokes the CLI against an isolated project directory.
func run(t *testing.T, dir string, args ...string) error {
	t.Helper()
	full := append([]string{"-project-dir", dir, "-no-git"}, args...)
	return Run(context.Background(), full)
}

func TestRunHelpAndVersion(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, run(t, dir, "-h"))
	assert.NoError(t, run(t, dir, "-version"))
	assert.NoError(t, run(t, dir, "help"))
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(t, t.TempDir(), "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestInitCreatesDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "init"))

	assert.FileExists(t, filepath.Join(dir, "todo.json"))
	assert.FileExists(t, filepath.Join(dir, "changelog.json"))
}

func TestTaskLifecycle(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run(t, dir, "task", "add", "-priority", "8", "-category", "bug", "Fix the flaky save"))
	require.NoError(t, run(t, dir, "task", "add", "Write docs"))
	require.NoError(t, run(t, dir, "dep", "add", "2", "1"))
	require.NoError(t, run(t, dir, "task", "complete", "-type", "bug", "-bump", "1"))

	store, err := todo.Open(filepath.Join(dir, "todo.json"), todo.Options{})
	require.NoError(t, err)
	first, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, todo.StatusComplete, first.Status)
	second, ok := store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "todo", second.Status)

	cl, err := changelog.Open(filepath.Join(dir, "changelog.json"), "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", cl.Current(), "bug completion bumps the patch component")
	info, ok := cl.Info("1.0.0")
	require.True(t, ok)
	var descriptions []string
	for _, c := range info.Changes {
		descriptions = append(descriptions, c.Description)
	}
	assert.Contains(t, descriptions, "Fix the flaky save")
}

func TestTaskUpdateAndDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "task", "add", "a task"))
	require.NoError(t, run(t, dir, "task", "update", "-priority", "9", "-set", "owner=sam", "1"))

	store, err := todo.Open(filepath.Join(dir, "todo.json"), todo.Options{})
	require.NoError(t, err)
	task, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 9, task.Priority)
	assert.Equal(t, "sam", task.Extra["owner"])

	require.NoError(t, run(t, dir, "task", "delete", "1"))
	err = run(t, dir, "task", "show", "1")
	assert.Error(t, err)
}

func TestDepRejectsCycleFromCLI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "task", "add", "a"))
	require.NoError(t, run(t, dir, "task", "add", "b"))
	require.NoError(t, run(t, dir, "dep", "add", "2", "1"))

	err := run(t, dir, "dep", "add", "1", "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, todo.ErrCycle)
}

func TestVersionBumpCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "version", "bump", "minor"))

	cl, err := changelog.Open(filepath.Join(dir, "changelog.json"), "")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", cl.Current())

	err = run(t, dir, "version", "bump", "gigantic")
	assert.Error(t, err)
}

func TestChangelogAddCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "changelog", "add", "-type", "enhancement", "Faster exports"))

	cl, err := changelog.Open(filepath.Join(dir, "changelog.json"), "")
	require.NoError(t, err)
	info, ok := cl.Info("1.0.0")
	require.True(t, ok)
	last := info.Changes[len(info.Changes)-1]
	assert.Equal(t, "enhancement", last.Type)
	assert.Equal(t, "Faster exports", last.Description)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "task", "add", "exported task"))

	out := filepath.Join(dir, "export.csv")
	require.NoError(t, run(t, dir, "export", "-todos", "-format", "csv", "-output", out))
	assert.FileExists(t, out)

	err := run(t, dir, "export", "-todos", "-changelog")
	assert.Error(t, err, "flags are mutually exclusive")
}

func TestDoctorCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "init"))
	assert.NoError(t, run(t, dir, "doctor"))
}

func TestAssistCommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "assist", "init", "-name", "demo"))
	assert.FileExists(t, filepath.Join(dir, "project_management", "compass", "project_intent.md"))
	assert.NoError(t, run(t, dir, "assist", "status"))
}
