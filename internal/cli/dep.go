package cli

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/project"
)

// depCommand dispatches the dependency subactions.
func depCommand(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("dep requires an action: add|rm|chain|blocked|unblocked")
	}
	action, rest := args[0], args[1:]

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		return depAdd(coord, rest)
	case "rm", "remove":
		return depRemove(coord, rest)
	case "chain", "tree":
		return depChain(coord, rest)
	case "blocked":
		return depBlocked(coord, rest)
	case "unblocked", "ready":
		return depUnblocked(coord, rest)
	default:
		return fmt.Errorf("unknown dep action: %s", action)
	}
}

func parseEdge(args []string) (dependent, prerequisite int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected two task ids: <dependent> <prerequisite>")
	}
	dependent, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("dependent id must be an integer: %q", args[0])
	}
	prerequisite, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("prerequisite id must be an integer: %q", args[1])
	}
	return dependent, prerequisite, nil
}

func depAdd(coord *project.Coordinator, args []string) error {
	dependent, prerequisite, err := parseEdge(args)
	if err != nil {
		return err
	}
	if err := coord.Graph.AddDependency(dependent, prerequisite); err != nil {
		return fmt.Errorf("adding dependency: %w", err)
	}
	fmt.Printf("Task #%d now depends on #%d\n", dependent, prerequisite)
	return nil
}

func depRemove(coord *project.Coordinator, args []string) error {
	dependent, prerequisite, err := parseEdge(args)
	if err != nil {
		return err
	}
	if err := coord.Graph.RemoveDependency(dependent, prerequisite); err != nil {
		return fmt.Errorf("removing dependency: %w", err)
	}
	fmt.Printf("Task #%d no longer depends on #%d\n", dependent, prerequisite)
	return nil
}

func depChain(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog dep chain", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseTaskID(fs.Args())
	if err != nil {
		return err
	}
	task, ok := coord.Todos.Get(id)
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}

	chain := coord.Graph.DependencyChain(id)
	if *asJSON {
		return printJSON(chain)
	}

	headerColor.Printf("Dependency chain for #%d %s\n", task.ID, task.Title)
	if len(chain.Dependencies) == 0 && len(chain.Dependents) == 0 {
		fmt.Println("  No dependencies in either direction.")
		return nil
	}
	if len(chain.Dependencies) > 0 {
		fmt.Println("  Depends on:")
		for _, depID := range chain.Dependencies {
			printChainMember(coord, depID)
		}
	}
	if len(chain.Dependents) > 0 {
		fmt.Println("  Blocks:")
		for _, depID := range chain.Dependents {
			printChainMember(coord, depID)
		}
	}
	return nil
}

func printChainMember(coord *project.Coordinator, id int) {
	if t, ok := coord.Todos.Get(id); ok {
		fmt.Printf("    #%-4d [%s] %s\n", t.ID, t.Status, t.Title)
		return
	}
	// Dangling edge endpoint: the task was deleted out from under the index.
	fmt.Printf("    #%-4d (missing)\n", id)
}

func depBlocked(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog dep blocked", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	blocked := coord.Graph.Blocked()
	if *asJSON {
		return printJSON(blocked)
	}
	if len(blocked) == 0 {
		fmt.Println("No blocked tasks.")
		return nil
	}
	headerColor.Println("Blocked tasks:")
	for _, t := range blocked {
		printTaskLine(t, true)
	}
	return nil
}

func depUnblocked(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog dep unblocked", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	unblocked := coord.Graph.Unblocked()
	if *asJSON {
		return printJSON(unblocked)
	}
	if len(unblocked) == 0 {
		fmt.Println("No ready tasks.")
		return nil
	}
	headerColor.Println("Ready to work on:")
	for _, t := range unblocked {
		printTaskLine(t, false)
	}
	return nil
}
