package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for the store and graph operations. Callers that only care
// whether an operation succeeded can treat any non-nil error as the old
// boolean false; callers that care why can errors.Is against these.
var (
	ErrNotFound = errors.New("task not found")
	ErrCycle    = errors.New("dependency would create a cycle")
)

// Options configures the defaults used when a document is created or is
// missing sections.
type Options struct {
	Categories    []string
	Statuses      []string
	PriorityScale string
}

// Store holds the canonical set of task records backed by a JSON document.
// All mutation goes through Store methods; every successful mutation rewrites
// the whole document. When the rewrite fails the in-memory state keeps the
// mutation and the error reports the failed persistence.
type Store struct {
	path string
	doc  *File
}

// Open loads the todo document at path, creating it with the default
// structure when it does not exist. Missing sections in an existing document
// are filled from opts (or the package defaults).
func Open(path string, opts Options) (*Store, error) {
	s := &Store{path: path}

	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	scale := opts.PriorityScale
	if scale == "" {
		scale = DefaultPriorityScale
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read todo file: %w", err)
		}
		s.doc = &File{
			Todos:         []Task{},
			Categories:    categories,
			Statuses:      statuses,
			PriorityScale: scale,
			Dependencies:  map[string][]int{},
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	var doc File
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse todo file: %w", err)
	}
	if doc.Todos == nil {
		doc.Todos = []Task{}
	}
	if doc.Categories == nil {
		doc.Categories = categories
	}
	if doc.Statuses == nil {
		doc.Statuses = statuses
	}
	if doc.PriorityScale == "" {
		doc.PriorityScale = scale
	}
	if doc.Dependencies == nil {
		doc.Dependencies = map[string][]int{}
	}
	s.doc = &doc
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Statuses returns the configured status set.
func (s *Store) Statuses() []string {
	return s.doc.Statuses
}

// Categories returns the configured category set.
func (s *Store) Categories() []string {
	return s.doc.Categories
}

// PriorityScale returns the configured priority scale description.
func (s *Store) PriorityScale() string {
	return s.doc.PriorityScale
}

// Document returns the in-memory document. Exposed for validation and
// export; mutation still belongs to the store methods.
func (s *Store) Document() *File {
	return s.doc
}

// save rewrites the whole document with 2-space indentation and a trailing
// newline.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todo file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create todo dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write todo file: %w", err)
	}
	return nil
}

// AddRequest carries the fields for a new task. Zero Priority defaults to 5
// and an empty Category defaults to "feature". Fields are merged onto the
// record as custom fields.
type AddRequest struct {
	Title       string
	Description string
	Priority    int
	Category    string
	TargetDate  string
	Notes       string
	Fields      map[string]any
}

// Add creates a task and returns its id. Ids are assigned max(existing)+1,
// starting at 1, and are immutable afterwards.
func (s *Store) Add(req AddRequest) (int, error) {
	if strings.TrimSpace(req.Title) == "" {
		return 0, fmt.Errorf("task title is required")
	}
	if req.Priority == 0 {
		req.Priority = 5
	}
	if req.Category == "" {
		req.Category = "feature"
	}

	nextID := 1
	for i := range s.doc.Todos {
		if s.doc.Todos[i].ID >= nextID {
			nextID = s.doc.Todos[i].ID + 1
		}
	}

	task := Task{
		ID:          nextID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      "todo",
		Category:    req.Category,
		CreatedDate: time.Now().Format(DateLayout),
		TargetDate:  req.TargetDate,
		Notes:       req.Notes,
	}
	for k, v := range req.Fields {
		if task.Extra == nil {
			task.Extra = make(map[string]any)
		}
		task.Extra[k] = v
	}

	s.doc.Todos = append(s.doc.Todos, task)
	if err := s.save(); err != nil {
		return 0, err
	}
	return nextID, nil
}

// find returns a pointer into the record slice, or nil.
func (s *Store) find(id int) *Task {
	for i := range s.doc.Todos {
		if s.doc.Todos[i].ID == id {
			return &s.doc.Todos[i]
		}
	}
	return nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int) (Task, bool) {
	t := s.find(id)
	if t == nil {
		return Task{}, false
	}
	return *t, true
}

// SortKey selects the ordering of List results.
type SortKey string

const (
	SortPriority SortKey = "priority"
	SortID       SortKey = "id"
	SortCreated  SortKey = "created_date"
)

// Filter narrows and orders List results. Zero values mean "no constraint";
// an empty SortBy sorts by priority.
type Filter struct {
	Status      string
	Category    string
	MinPriority int
	MaxPriority int
	SortBy      SortKey
}

// List returns tasks matching the filter. Priority order is descending
// priority with ascending id as the tie-break; created_date order is newest
// first.
func (s *Store) List(f Filter) []Task {
	out := make([]Task, 0, len(s.doc.Todos))
	for i := range s.doc.Todos {
		t := s.doc.Todos[i]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.MinPriority != 0 && t.Priority < f.MinPriority {
			continue
		}
		if f.MaxPriority != 0 && t.Priority > f.MaxPriority {
			continue
		}
		out = append(out, t)
	}

	switch f.SortBy {
	case SortID:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	case SortCreated:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedDate > out[j].CreatedDate })
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Priority != out[j].Priority {
				return out[i].Priority > out[j].Priority
			}
			return out[i].ID < out[j].ID
		})
	}
	return out
}

// UpdateStatus sets a task's status. Transitioning into complete stamps
// completed_date with the current date. The status value is not checked
// against the configured set; that is the caller's concern (doctor warns on
// out-of-set values).
func (s *Store) UpdateStatus(id int, status string) error {
	t := s.find(id)
	if t == nil {
		return ErrNotFound
	}
	t.Status = status
	if status == StatusComplete {
		t.CompletedDate = time.Now().Format(DateLayout)
	}
	return s.save()
}

// UpdatePriority sets a task's priority.
func (s *Store) UpdatePriority(id, priority int) error {
	t := s.find(id)
	if t == nil {
		return ErrNotFound
	}
	t.Priority = priority
	return s.save()
}

// UpdateFields merges arbitrary fields onto a task. Fixed fields are updated
// in place when the value has a usable type; unknown keys go to the Extra
// side-map. The id is immutable and silently skipped.
func (s *Store) UpdateFields(id int, fields map[string]any) error {
	t := s.find(id)
	if t == nil {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "id":
			// immutable
		case "title":
			if str, ok := v.(string); ok {
				t.Title = str
			}
		case "description":
			if str, ok := v.(string); ok {
				t.Description = str
			}
		case "priority":
			if n, ok := toInt(v); ok {
				t.Priority = n
			}
		case "status":
			if str, ok := v.(string); ok {
				t.Status = str
			}
		case "category":
			if str, ok := v.(string); ok {
				t.Category = str
			}
		case "created_date":
			if str, ok := v.(string); ok {
				t.CreatedDate = str
			}
		case "target_date":
			if str, ok := v.(string); ok {
				t.TargetDate = str
			}
		case "completed_date":
			if str, ok := v.(string); ok {
				t.CompletedDate = str
			}
		case "notes":
			if str, ok := v.(string); ok {
				t.Notes = str
			}
		default:
			if t.Extra == nil {
				t.Extra = make(map[string]any)
			}
			t.Extra[k] = v
		}
	}
	return s.save()
}

// Delete removes a task and every dependency edge that references it, in the
// same mutation, so the adjacency index never holds dangling ids.
func (s *Store) Delete(id int) error {
	idx := -1
	for i := range s.doc.Todos {
		if s.doc.Todos[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	s.doc.Todos = append(s.doc.Todos[:idx], s.doc.Todos[idx+1:]...)

	delete(s.doc.Dependencies, strconv.Itoa(id))
	for key, deps := range s.doc.Dependencies {
		kept := deps[:0]
		for _, dep := range deps {
			if dep != id {
				kept = append(kept, dep)
			}
		}
		if len(kept) == 0 {
			delete(s.doc.Dependencies, key)
		} else {
			s.doc.Dependencies[key] = kept
		}
	}
	return s.save()
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
