// Package export renders task and changelog data to portable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/todo"
)

// Supported formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// TodosJSON renders every task as an indented JSON array.
func TodosJSON(store *todo.Store) (string, error) {
	tasks := store.List(todo.Filter{})
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal todos: %w", err)
	}
	return string(data) + "\n", nil
}

// TodosCSV renders tasks as CSV with a fixed column set.
func TodosCSV(store *todo.Store) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"id", "title", "status", "priority", "category"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, task := range store.List(todo.Filter{}) {
		row := []string{
			strconv.Itoa(task.ID),
			task.Title,
			task.Status,
			strconv.Itoa(task.Priority),
			task.Category,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}

// TodosMarkdown renders tasks grouped by status, in the document's status
// order. Empty statuses are skipped.
func TodosMarkdown(store *todo.Store) string {
	var sb strings.Builder
	sb.WriteString("# Todos\n\n")
	for _, status := range store.Document().Statuses {
		tasks := store.List(todo.Filter{Status: status})
		if len(tasks) == 0 {
			continue
		}
		sb.WriteString("## " + titleCase(status) + "\n\n")
		for _, task := range tasks {
			fmt.Fprintf(&sb, "- **#%d**: %s (Priority: %d)\n", task.ID, task.Title, task.Priority)
			if task.Description != "" {
				fmt.Fprintf(&sb, "  - %s\n", task.Description)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Combined is the full-project export payload.
type Combined struct {
	Todos     []todo.Task     `json:"todos"`
	Changelog *changelog.File `json:"changelog"`
}

// CombinedJSON renders tasks and the changelog document together.
func CombinedJSON(todos *todo.Store, cl *changelog.Store) (string, error) {
	payload := Combined{
		Todos:     todos.List(todo.Filter{}),
		Changelog: cl.Document(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal combined export: %w", err)
	}
	return string(data) + "\n", nil
}

// Todos renders tasks in the named format.
func Todos(store *todo.Store, format string) (string, error) {
	switch format {
	case FormatJSON:
		return TodosJSON(store)
	case FormatCSV:
		return TodosCSV(store)
	case FormatMarkdown:
		return TodosMarkdown(store), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// Changelog renders the changelog in the named format.
func Changelog(cl *changelog.Store, format string) (string, error) {
	switch format {
	case FormatJSON:
		return cl.ExportJSON()
	case FormatMarkdown:
		return cl.ExportMarkdown(), nil
	case FormatText:
		return cl.ExportText(), nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
