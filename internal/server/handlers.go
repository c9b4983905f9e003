package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/todo"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeError maps store sentinels to HTTP status codes.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, todo.ErrCycle):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func taskID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Status())
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Todos.Summary())
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := todo.Filter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		SortBy:   todo.SortKey(q.Get("sort")),
	}
	if v := q.Get("min_priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_priority must be an integer")
			return
		}
		f.MinPriority = n
	}
	if v := q.Get("max_priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_priority must be an integer")
			return
		}
		f.MaxPriority = n
	}
	writeJSON(w, http.StatusOK, s.coord.Todos.List(f))
}

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
	Category    string         `json:"category"`
	TargetDate  string         `json:"target_date"`
	Notes       string         `json:"notes"`
	Fields      map[string]any `json:"fields"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.coord.Todos.Add(todo.AddRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		TargetDate:  req.TargetDate,
		Notes:       req.Notes,
		Fields:      req.Fields,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	task, _ := s.coord.Todos.Get(id)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be an integer")
		return
	}
	task, ok := s.coord.Todos.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be an integer")
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.coord.Todos.UpdateFields(id, fields); err != nil {
		storeError(w, err)
		return
	}
	task, _ := s.coord.Todos.Get(id)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be an integer")
		return
	}
	if err := s.coord.Todos.Delete(id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type completeTaskRequest struct {
	ChangeType  string `json:"change_type"`
	Description string `json:"description"`
	Bump        bool   `json:"bump"`
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be an integer")
		return
	}
	req := completeTaskRequest{ChangeType: "feature"}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.ChangeType == "" {
			req.ChangeType = "feature"
		}
	}
	if err := s.coord.CompleteWithChangelog(id, req.ChangeType, req.Description, req.Bump); err != nil {
		storeError(w, err)
		return
	}
	task, _ := s.coord.Todos.Get(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"task":            task,
		"current_version": s.coord.Changelog.Current(),
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "task id must be an integer")
		return
	}
	if _, ok := s.coord.Todos.Get(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, s.coord.Graph.DependencyChain(id))
}

func (s *Server) handleBlocked(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Graph.Blocked())
}

func (s *Server) handleUnblocked(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Graph.Unblocked())
}

type dependencyRequest struct {
	DependentID    int `json:"dependent_id"`
	PrerequisiteID int `json:"prerequisite_id"`
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	var req dependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.coord.Graph.AddDependency(req.DependentID, req.PrerequisiteID); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	var req dependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.coord.Graph.RemoveDependency(req.DependentID, req.PrerequisiteID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangelog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Changelog.Document())
}

func (s *Server) handleChangelogVersion(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")
	info, ok := s.coord.Changelog.Info(version)
	if !ok {
		writeError(w, http.StatusNotFound, "version not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"date":    info.Date,
		"changes": info.Changes,
	})
}

type bumpRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *Server) handleBump(w http.ResponseWriter, r *http.Request) {
	var req bumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	kind := changelog.BumpKind(req.Type)
	switch kind {
	case changelog.BumpMajor, changelog.BumpMinor, changelog.BumpPatch:
	default:
		writeError(w, http.StatusBadRequest, "type must be major, minor, or patch")
		return
	}
	next, err := s.coord.Changelog.Bump(kind, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": next})
}
