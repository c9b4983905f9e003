package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/project"
	"github.com/tasklog/tasklog/internal/todo"
)

func newTestServer(t *testing.T) (*Server, *project.Coordinator) {
	t.Helper()
	dir := t.TempDir()
	todos, err := todo.Open(filepath.Join(dir, "todo.json"), todo.Options{})
	require.NoError(t, err)
	cl, err := changelog.Open(filepath.Join(dir, "changelog.json"), "")
	require.NoError(t, err)
	coord := project.New(todos, todo.NewGraph(todos), cl)
	return New(":0", coord), coord
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTaskCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title": "Build exporter", "priority": 7, "category": "feature",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "todo", created["status"])

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tasks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/tasks/1", map[string]any{
		"priority": 9, "owner": "sam",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, float64(9), updated["priority"])
	assert.Equal(t, "sam", updated["owner"])

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksFilters(t *testing.T) {
	srv, coord := newTestServer(t)
	for i, p := range []int{3, 8, 9} {
		_, err := coord.Todos.Add(todo.AddRequest{Title: fmt.Sprintf("t%d", i), Priority: p})
		require.NoError(t, err)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/tasks?min_priority=8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]map[string]any](t, rec)
	require.Len(t, tasks, 2)
	assert.Equal(t, float64(9), tasks[0]["priority"], "priority descending by default")

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tasks?min_priority=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDependencyEndpoints(t *testing.T) {
	srv, coord := newTestServer(t)
	a, err := coord.Todos.Add(todo.AddRequest{Title: "a"})
	require.NoError(t, err)
	b, err := coord.Todos.Add(todo.AddRequest{Title: "b"})
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/dependencies", dependencyRequest{DependentID: b, PrerequisiteID: a})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The reverse edge would close a cycle.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/dependencies", dependencyRequest{DependentID: a, PrerequisiteID: b})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown endpoint id.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/dependencies", dependencyRequest{DependentID: 99, PrerequisiteID: a})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/tasks/blocked", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	blocked := decode[[]map[string]any](t, rec)
	require.Len(t, blocked, 1)
	assert.Equal(t, float64(b), blocked[0]["id"])

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d/chain", b), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chain := decode[map[string]any](t, rec)
	assert.Equal(t, []any{float64(a)}, chain["dependencies"])

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/dependencies", dependencyRequest{DependentID: b, PrerequisiteID: a})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/dependencies", dependencyRequest{DependentID: b, PrerequisiteID: a})
	assert.Equal(t, http.StatusNotFound, rec.Code, "edge already gone")
}

func TestCompleteTask(t *testing.T) {
	srv, coord := newTestServer(t)
	id, err := coord.Todos.Add(todo.AddRequest{Title: "ship it", Priority: 8})
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/complete", id), completeTaskRequest{
		ChangeType: "feature", Bump: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "1.1.0", resp["current_version"])
	task := resp["task"].(map[string]any)
	assert.Equal(t, "complete", task["status"])

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/tasks/99/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangelogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/changelog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "1.0.0", doc["current_version"])

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/changelog/1.0.0", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/changelog/9.9.9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBumpEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/version/bump", bumpRequest{Type: "minor", Message: "cut release"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1.1.0", decode[map[string]string](t, rec)["version"])

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/version/bump", bumpRequest{Type: "gigantic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusAndSummary(t *testing.T) {
	srv, coord := newTestServer(t)
	_, err := coord.Todos.Add(todo.AddRequest{Title: "a", Priority: 9})
	require.NoError(t, err)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), summary["total"])

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, "1.0.0", status["current_version"])
}
