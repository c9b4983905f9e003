package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tasklog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultTodoFile, cfg.TodoFile)
	assert.Equal(t, DefaultChangelogFile, cfg.ChangelogFile)
	assert.Equal(t, DefaultInitialVersion, cfg.InitialVersion)
	assert.True(t, cfg.GitEnabled)
	assert.Equal(t, "v", cfg.TagPrefix)
	assert.Equal(t, resolveSymlinks(t, dir), resolveSymlinks(t, cfg.ProjectRoot))
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "todo.json"), cfg.TodoPath())
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	toml := `todo_file = "tasks.json"
initial_version = "0.1.0"
git_enabled = false
categories = ["core", "infra"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasklog.toml"), []byte(toml), 0644))
	t.Chdir(dir)

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "tasks.json", cfg.TodoFile)
	assert.Equal(t, "0.1.0", cfg.InitialVersion)
	assert.False(t, cfg.GitEnabled)
	assert.Equal(t, []string{"core", "infra"}, cfg.Categories)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasklog.toml"), []byte(`todo_file = "tasks.json"`+"\n"), 0644))
	t.Chdir(dir)
	t.Setenv("TASKLOG_TODO_FILE", "env.json")
	t.Setenv("TASKLOG_GIT", "false")

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "env.json", cfg.TodoFile)
	assert.False(t, cfg.GitEnabled)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKLOG_TODO_FILE", "env.json")

	cfg, err := Load(newFlagSet(), []string{"-todo-file", "flag.json", "-no-git"})
	require.NoError(t, err)

	assert.Equal(t, "flag.json", cfg.TodoFile)
	assert.False(t, cfg.GitEnabled)
}

func TestDetectProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), nil, 0644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, root, DetectProjectRoot(nested))

	// No indicator anywhere below the temp dir: falls back to the start.
	bare := filepath.Join(t.TempDir(), "sub")
	require.NoError(t, os.MkdirAll(bare, 0755))
	got := DetectProjectRoot(bare)
	assert.True(t, got == bare || got != "", "walk must terminate")
}

func TestAbsolutePathsPassThrough(t *testing.T) {
	cfg := &Config{ProjectRoot: "/proj", TodoFile: "/elsewhere/todo.json", ChangelogFile: "docs/changelog.json"}
	assert.Equal(t, "/elsewhere/todo.json", cfg.TodoPath())
	assert.Equal(t, "/proj/docs/changelog.json", cfg.ChangelogPath())
}

// resolveSymlinks normalizes /tmp vs /private/tmp style differences.
func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
