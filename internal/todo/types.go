package todo

import (
	"encoding/json"
	"fmt"
)

// DateLayout is the date format used across both documents.
const DateLayout = "2006-01-02"

// StatusComplete is the one status the core treats specially: it stamps
// completed_date and drives the blocked/unblocked partition. All other
// statuses are configuration, not code.
const StatusComplete = "complete"

// Defaults written into fresh documents.
var (
	DefaultCategories    = []string{"bug", "feature", "enhancement", "docs", "refactor", "test"}
	DefaultStatuses      = []string{"todo", "in_progress", "testing", "complete"}
	DefaultPriorityScale = "1-10 (10=highest)"
)

// Task is a single tracked unit of work.
//
// Extra holds caller-supplied custom fields outside the fixed schema; they
// are flattened into the task object on disk and round-trip through
// load/save. Custom fields never shadow fixed fields.
type Task struct {
	ID            int
	Title         string
	Description   string
	Priority      int
	Status        string
	Category      string
	CreatedDate   string
	TargetDate    string
	CompletedDate string
	Notes         string
	Extra         map[string]any
}

// IsComplete reports whether the task has reached the complete status.
func (t *Task) IsComplete() bool {
	return t.Status == StatusComplete
}

// taskJSON mirrors Task for (un)marshaling of the fixed fields. The nullable
// columns are pointers so absent values serialize as JSON null, matching the
// document format.
type taskJSON struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Priority      int     `json:"priority"`
	Status        string  `json:"status"`
	Category      string  `json:"category"`
	CreatedDate   string  `json:"created_date"`
	TargetDate    *string `json:"target_date"`
	CompletedDate *string `json:"completed_date"`
	Notes         *string `json:"notes"`
}

// fixedTaskKeys are the document keys owned by the Task struct itself;
// everything else lands in Extra.
var fixedTaskKeys = map[string]bool{
	"id": true, "title": true, "description": true, "priority": true,
	"status": true, "category": true, "created_date": true,
	"target_date": true, "completed_date": true, "notes": true,
}

// MarshalJSON flattens the fixed fields and the Extra side-map into a single
// JSON object.
func (t Task) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(t.Extra)+10)
	for k, v := range t.Extra {
		if !fixedTaskKeys[k] {
			m[k] = v
		}
	}
	m["id"] = t.ID
	m["title"] = t.Title
	m["description"] = t.Description
	m["priority"] = t.Priority
	m["status"] = t.Status
	m["category"] = t.Category
	m["created_date"] = t.CreatedDate
	m["target_date"] = nullableString(t.TargetDate)
	m["completed_date"] = nullableString(t.CompletedDate)
	m["notes"] = nullableString(t.Notes)
	return json.Marshal(m)
}

// UnmarshalJSON splits a task object into the fixed fields and Extra.
func (t *Task) UnmarshalJSON(data []byte) error {
	var fixed taskJSON
	if err := json.Unmarshal(data, &fixed); err != nil {
		return fmt.Errorf("parse task: %w", err)
	}

	*t = Task{
		ID:            fixed.ID,
		Title:         fixed.Title,
		Description:   fixed.Description,
		Priority:      fixed.Priority,
		Status:        fixed.Status,
		Category:      fixed.Category,
		CreatedDate:   fixed.CreatedDate,
		TargetDate:    stringValue(fixed.TargetDate),
		CompletedDate: stringValue(fixed.CompletedDate),
		Notes:         stringValue(fixed.Notes),
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse task fields: %w", err)
	}
	for key, val := range raw {
		if fixedTaskKeys[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return fmt.Errorf("parse task field %q: %w", key, err)
		}
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[key] = v
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// File is the on-disk todo document.
type File struct {
	Todos         []Task           `json:"todos"`
	Categories    []string         `json:"categories"`
	Statuses      []string         `json:"statuses"`
	PriorityScale string           `json:"priority_scale"`
	Dependencies  map[string][]int `json:"dependencies"`
}
