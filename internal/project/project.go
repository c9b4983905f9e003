// Package project coordinates the task and changelog stores for workflows
// that span both, most importantly completing a task and recording the
// change.
package project

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/todo"
)

// Coordinator bundles the two stores and the graph view. The stores stay
// independent documents; the coordinator sequences writes across them
// without any shared transaction.
type Coordinator struct {
	Todos     *todo.Store
	Graph     *todo.Graph
	Changelog *changelog.Store
}

// New returns a coordinator over the given stores.
func New(todos *todo.Store, graph *todo.Graph, cl *changelog.Store) *Coordinator {
	return &Coordinator{Todos: todos, Graph: graph, Changelog: cl}
}

// CompleteWithChangelog marks a task complete and appends a matching change
// record to the current version. The description defaults to the task title;
// the record carries the task's priority and category and a todo_id
// back-reference.
//
// When autoBump is set, a successful completion+log also creates the next
// version, with the severity derived from changeType. A failed bump is
// logged but does not fail the call: the task is already complete and
// logged. When the changelog append fails after the task was marked
// complete, the two documents are left inconsistent; there is no rollback.
func (c *Coordinator) CompleteWithChangelog(taskID int, changeType, description string, autoBump bool) error {
	task, ok := c.Todos.Get(taskID)
	if !ok {
		return todo.ErrNotFound
	}

	if err := c.Todos.UpdateStatus(taskID, todo.StatusComplete); err != nil {
		return fmt.Errorf("complete task %d: %w", taskID, err)
	}

	if description == "" {
		description = task.Title
	}
	id := taskID
	err := c.Changelog.AddChange(changelog.ChangeRequest{
		Type:        changeType,
		Description: description,
		TodoID:      &id,
		Fields: map[string]any{
			"todo_priority": task.Priority,
			"todo_category": task.Category,
		},
	})
	if err != nil {
		return fmt.Errorf("log completed task %d: %w", taskID, err)
	}

	if autoBump {
		kind := changelog.BumpForChangeType(changeType)
		message := fmt.Sprintf("Auto-bump for completed todo #%d", taskID)
		if next, err := c.Changelog.Bump(kind, message); err != nil {
			log.Warn().Err(err).Int("todo_id", taskID).Msg("auto version bump failed")
		} else {
			log.Debug().Str("version", next).Int("todo_id", taskID).Msg("auto version bump")
		}
	}
	return nil
}

// Report is the combined project status across both stores.
type Report struct {
	Todos          todo.Summary `json:"todos"`
	BlockedCount   int          `json:"blocked_count"`
	UnblockedCount int          `json:"unblocked_count"`
	CurrentVersion string       `json:"current_version"`
	VersionDate    string       `json:"version_date,omitempty"`
	CurrentChanges int          `json:"total_changes_current"`
	RecentChanges  int          `json:"recent_changes_7d"`
	TotalVersions  int          `json:"total_versions"`
	ChangelogFile  string       `json:"changelog_file"`
}

// Status aggregates the task summary, the blocked/unblocked split, and the
// version summary into one report.
func (c *Coordinator) Status() Report {
	r := Report{
		Todos:          c.Todos.Summary(),
		BlockedCount:   len(c.Graph.Blocked()),
		UnblockedCount: len(c.Graph.Unblocked()),
		CurrentVersion: c.Changelog.Current(),
		RecentChanges:  len(c.Changelog.Recent(7)),
		TotalVersions:  len(c.Changelog.Document().Versions),
		ChangelogFile:  c.Changelog.Path(),
	}
	if info, ok := c.Changelog.Info(""); ok {
		r.VersionDate = info.Date
		r.CurrentChanges = len(info.Changes)
	}
	return r
}
