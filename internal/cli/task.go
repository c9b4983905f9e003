package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/project"
	"github.com/tasklog/tasklog/internal/todo"
)

var (
	highPriorityColor = color.New(color.FgRed, color.Bold)
	completeColor     = color.New(color.FgGreen)
	headerColor       = color.New(color.Bold)
)

// taskCommand dispatches the task subactions.
func taskCommand(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("task requires an action: add|list|show|update|complete|delete")
	}
	action, rest := args[0], args[1:]

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		return taskAdd(coord, rest)
	case "list", "ls":
		return taskList(coord, rest)
	case "show":
		return taskShow(coord, rest)
	case "update":
		return taskUpdate(coord, rest)
	case "complete", "done":
		return taskComplete(coord, rest)
	case "delete", "rm":
		return taskDelete(coord, rest)
	case "deps":
		return depChain(coord, rest)
	default:
		return fmt.Errorf("unknown task action: %s", action)
	}
}

func taskAdd(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog task add", flag.ContinueOnError)
	priority := fs.Int("priority", 0, "Priority 1-10 (default 5)")
	category := fs.String("category", "", "Category (default feature)")
	description := fs.String("description", "", "Longer description")
	target := fs.String("target", "", "Target date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Free-form notes")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))

	id, err := coord.Todos.Add(todo.AddRequest{
		Title:       title,
		Description: *description,
		Priority:    *priority,
		Category:    *category,
		TargetDate:  *target,
		Notes:       *notes,
	})
	if err != nil {
		return fmt.Errorf("adding task: %w", err)
	}
	task, _ := coord.Todos.Get(id)
	fmt.Printf("Added task #%d: %s (P%d, %s)\n", task.ID, task.Title, task.Priority, task.Category)
	return nil
}

func taskList(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog task list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	category := fs.String("category", "", "Filter by category")
	minPriority := fs.Int("min-priority", 0, "Minimum priority")
	sortBy := fs.String("sort", "", "Sort order (priority|id|created_date)")
	asJSON := fs.Bool("json", false, "Output JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	tasks := coord.Todos.List(todo.Filter{
		Status:      *status,
		Category:    *category,
		MinPriority: *minPriority,
		SortBy:      todo.SortKey(*sortBy),
	})
	if *asJSON {
		return printJSON(tasks)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	blocked := blockedSet(coord)
	for _, t := range tasks {
		printTaskLine(t, blocked[t.ID])
	}
	return nil
}

func taskShow(coord *project.Coordinator, args []string) error {
	id, err := parseTaskID(args)
	if err != nil {
		return err
	}
	task, ok := coord.Todos.Get(id)
	if !ok {
		return fmt.Errorf("task %d: %w", id, todo.ErrNotFound)
	}

	headerColor.Printf("#%d %s\n", task.ID, task.Title)
	fmt.Printf("  Status:   %s\n", task.Status)
	fmt.Printf("  Priority: %d\n", task.Priority)
	fmt.Printf("  Category: %s\n", task.Category)
	fmt.Printf("  Created:  %s\n", task.CreatedDate)
	if task.TargetDate != "" {
		fmt.Printf("  Target:   %s\n", task.TargetDate)
	}
	if task.CompletedDate != "" {
		fmt.Printf("  Completed: %s\n", task.CompletedDate)
	}
	if task.Description != "" {
		fmt.Printf("  Description: %s\n", task.Description)
	}
	if task.Notes != "" {
		fmt.Printf("  Notes: %s\n", task.Notes)
	}
	for key, value := range task.Extra {
		fmt.Printf("  %s: %v\n", key, value)
	}

	chain := coord.Graph.DependencyChain(id)
	if len(chain.Dependencies) > 0 {
		fmt.Printf("  Depends on: %v\n", chain.Dependencies)
	}
	if len(chain.Dependents) > 0 {
		fmt.Printf("  Blocks: %v\n", chain.Dependents)
	}
	if coord.Graph.IsBlocked(id) {
		highPriorityColor.Println("  BLOCKED: waiting on incomplete prerequisites")
	}
	return nil
}

func taskUpdate(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog task update", flag.ContinueOnError)
	status := fs.String("status", "", "New status")
	priority := fs.Int("priority", 0, "New priority")
	set := fs.String("set", "", "Extra fields as key=value pairs, comma separated")

	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseTaskID(fs.Args())
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if *status != "" {
		fields["status"] = *status
	}
	if *priority != 0 {
		fields["priority"] = *priority
	}
	for _, pair := range strings.Split(*set, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid -set pair %q, expected key=value", pair)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update: pass -status, -priority, or -set")
	}

	if err := coord.Todos.UpdateFields(id, fields); err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	fmt.Printf("Updated task #%d\n", id)
	return nil
}

func taskComplete(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog task complete", flag.ContinueOnError)
	changeType := fs.String("type", "feature", "Change type for the changelog entry")
	description := fs.String("description", "", "Changelog description (default: task title)")
	bump := fs.Bool("bump", false, "Auto-bump the version after completion")
	noLog := fs.Bool("no-log", false, "Complete without a changelog entry")

	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseTaskID(fs.Args())
	if err != nil {
		return err
	}

	if *noLog {
		if err := coord.Todos.UpdateStatus(id, todo.StatusComplete); err != nil {
			return fmt.Errorf("completing task %d: %w", id, err)
		}
		fmt.Printf("Completed task #%d\n", id)
		return nil
	}

	if err := coord.CompleteWithChangelog(id, *changeType, *description, *bump); err != nil {
		return fmt.Errorf("completing task %d: %w", id, err)
	}
	fmt.Printf("Completed task #%d and logged a %s change\n", id, *changeType)
	if *bump {
		fmt.Printf("Current version: %s\n", coord.Changelog.Current())
	}
	return nil
}

func taskDelete(coord *project.Coordinator, args []string) error {
	id, err := parseTaskID(args)
	if err != nil {
		return err
	}
	if err := coord.Todos.Delete(id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	fmt.Printf("Deleted task #%d\n", id)
	return nil
}

func parseTaskID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one task id argument")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("task id must be an integer: %q", args[0])
	}
	return id, nil
}

func blockedSet(coord *project.Coordinator) map[int]bool {
	set := make(map[int]bool)
	for _, t := range coord.Graph.Blocked() {
		set[t.ID] = true
	}
	return set
}

func printTaskLine(t todo.Task, blocked bool) {
	line := fmt.Sprintf("  #%-4d [%s] (P%d) %s", t.ID, t.Status, t.Priority, t.Title)
	switch {
	case blocked:
		highPriorityColor.Println(line + "  [blocked]")
	case t.Status == todo.StatusComplete:
		completeColor.Println(line)
	case t.Priority >= 8:
		highPriorityColor.Println(line)
	default:
		fmt.Println(line)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
