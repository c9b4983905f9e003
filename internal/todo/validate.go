package todo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tasklog/tasklog/schema"
)

// ValidationError is a validation failure with the document path it occurred
// at.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult collects errors and warnings from a document check.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool
}

// Validate checks the in-memory document against the embedded JSON Schema
// plus the cross-record invariants the schema cannot express: unique ids,
// edge endpoints that resolve to tasks, and an acyclic dependency index.
// Out-of-set statuses and categories are warnings, not errors; the store
// does not enforce those sets on mutation either.
func (s *Store) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	sch, err := schema.Compile("todo.schema.json", schema.Todo)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("schema unavailable, using minimal checks: %v", err))
	} else {
		result.UsedSchema = true
		if err := schema.Validate(sch, s.doc); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	}

	s.validateRecords(result)
	return result
}

// validateRecords performs the cross-record checks.
func (s *Store) validateRecords(result *ValidationResult) {
	statuses := make(map[string]bool, len(s.doc.Statuses))
	for _, status := range s.doc.Statuses {
		statuses[status] = true
	}
	categories := make(map[string]bool, len(s.doc.Categories))
	for _, category := range s.doc.Categories {
		categories[category] = true
	}

	seen := make(map[int]bool, len(s.doc.Todos))
	for i := range s.doc.Todos {
		t := &s.doc.Todos[i]
		path := fmt.Sprintf("todos[%d]", i)
		if seen[t.ID] {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d", t.ID),
			})
		}
		seen[t.ID] = true
		if !statuses[t.Status] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: status %q is not in the configured set", path, t.Status))
		}
		if !categories[t.Category] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: category %q is not in the configured set", path, t.Category))
		}
	}

	for key, deps := range s.doc.Dependencies {
		dependent, err := strconv.Atoi(key)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: "dependencies." + key,
				Err:  fmt.Errorf("key is not a task id"),
			})
			continue
		}
		if !seen[dependent] {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("dependencies.%s: dependent task does not exist", key))
		}
		if len(deps) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: "dependencies." + key,
				Err:  fmt.Errorf("empty edge list"),
			})
		}
		for _, dep := range deps {
			if !seen[dep] {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("dependencies.%s: prerequisite %d does not exist", key, dep))
			}
		}
	}

	if cycle := s.detectCycle(); cycle != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "dependencies",
			Err:  fmt.Errorf("cycle detected: %v", cycle),
		})
	}
}

// detectCycle runs a colored DFS over the dependency index and returns a
// cycle path when one exists. AddDependency keeps the index acyclic, so this
// only fires on hand-edited documents.
func (s *Store) detectCycle() []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	adj := make(map[int][]int, len(s.doc.Dependencies))
	ids := make([]int, 0, len(s.doc.Dependencies))
	for key, deps := range s.doc.Dependencies {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		adj[id] = deps
		ids = append(ids, id)
	}
	sort.Ints(ids)

	color := make(map[int]int, len(adj))
	parent := make(map[int]int, len(adj))

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, next := range adj[node] {
			if color[next] == gray {
				cycle := []int{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// appendSchemaErrors flattens a jsonschema validation error into per-path
// errors.
func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: pointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// pointerToPath converts a JSON pointer into dotted path notation.
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var path string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
