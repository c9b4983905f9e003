package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/todo"
)

func newTestStores(t *testing.T) (*todo.Store, *changelog.Store) {
	t.Helper()
	dir := t.TempDir()
	todos, err := todo.Open(filepath.Join(dir, "todo.json"), todo.Options{})
	require.NoError(t, err)
	cl, err := changelog.Open(filepath.Join(dir, "changelog.json"), "")
	require.NoError(t, err)

	_, err = todos.Add(todo.AddRequest{Title: "Write parser", Priority: 8, Category: "feature", Description: "tokenizer first"})
	require.NoError(t, err)
	id, err := todos.Add(todo.AddRequest{Title: "Fix crash", Priority: 9, Category: "bug"})
	require.NoError(t, err)
	require.NoError(t, todos.UpdateStatus(id, "in_progress"))
	return todos, cl
}

func TestTodosJSON(t *testing.T) {
	todos, _ := newTestStores(t)
	out, err := TodosJSON(todos)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "Fix crash", decoded[0]["title"], "priority order")
}

func TestTodosCSV(t *testing.T) {
	todos, _ := newTestStores(t)
	out, err := TodosCSV(todos)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,title,status,priority,category", lines[0])
	assert.Equal(t, "2,Fix crash,in_progress,9,bug", lines[1])
	assert.Equal(t, "1,Write parser,todo,8,feature", lines[2])
}

func TestTodosMarkdown(t *testing.T) {
	todos, _ := newTestStores(t)
	out := TodosMarkdown(todos)

	assert.True(t, strings.HasPrefix(out, "# Todos\n\n"))
	assert.Contains(t, out, "## Todo\n\n- **#1**: Write parser (Priority: 8)\n  - tokenizer first\n")
	assert.Contains(t, out, "## In progress\n\n- **#2**: Fix crash (Priority: 9)\n")
	assert.NotContains(t, out, "## Complete", "empty statuses are skipped")
}

func TestCombinedJSON(t *testing.T) {
	todos, cl := newTestStores(t)
	out, err := CombinedJSON(todos, cl)
	require.NoError(t, err)

	var decoded struct {
		Todos     []map[string]any `json:"todos"`
		Changelog map[string]any   `json:"changelog"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Todos, 2)
	assert.Equal(t, "1.0.0", decoded.Changelog["current_version"])
}

func TestUnsupportedFormats(t *testing.T) {
	todos, cl := newTestStores(t)

	_, err := Todos(todos, "yaml")
	assert.ErrorContains(t, err, "unsupported export format")

	_, err = Changelog(cl, "csv")
	assert.ErrorContains(t, err, "unsupported export format")
}
