package cli

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/todo"
)

// doctorCommand checks the configuration and validates both documents.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Tasklog Doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	fmt.Printf("Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if !checkTodoFile(cfg, *verbose) {
		allOK = false
	}
	fmt.Println()

	if !checkChangelogFile(cfg, *verbose) {
		allOK = false
	}
	fmt.Println()

	fmt.Println("Git:")
	if !cfg.GitEnabled {
		fmt.Println("  ⚠️  Disabled")
	} else if path, err := exec.LookPath("git"); err != nil {
		fmt.Printf("  ⚠️  Not found in PATH: %v\n", err)
	} else {
		fmt.Printf("  ✅ OK (found in PATH: %s)\n", path)
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

func checkTodoFile(cfg *config.Config, verbose bool) bool {
	path := cfg.TodoPath()
	fmt.Printf("Todo file: %s\n", path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created on first use)")
			return true
		}
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	}
	if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		return false
	}

	store, err := todo.Open(path, todo.Options{
		Categories:    cfg.Categories,
		Statuses:      cfg.Statuses,
		PriorityScale: cfg.PriorityScale,
	})
	if err != nil {
		fmt.Printf("  ❌ Load error: %v\n", err)
		return false
	}

	result := store.Validate()
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Println("  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		return false
	}
	fmt.Println("  ✅ Valid")
	if verbose {
		tasks := store.List(todo.Filter{SortBy: todo.SortID})
		fmt.Printf("  Tasks: %d\n", len(tasks))
		for _, t := range tasks {
			fmt.Printf("    - [%s] #%d: %s\n", t.Status, t.ID, t.Title)
		}
	}
	return true
}

func checkChangelogFile(cfg *config.Config, verbose bool) bool {
	path := cfg.ChangelogPath()
	fmt.Printf("Changelog file: %s\n", path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created on first use)")
			return true
		}
		fmt.Printf("  ❌ Error: %v\n", err)
		return false
	}
	if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		return false
	}

	store, err := changelog.Open(path, cfg.InitialVersion)
	if err != nil {
		fmt.Printf("  ❌ Load error: %v\n", err)
		return false
	}

	result := store.Validate()
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Println("  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		return false
	}
	fmt.Println("  ✅ Valid")
	if verbose {
		fmt.Printf("  Current version: %s\n", store.Current())
		fmt.Printf("  Versions: %d\n", len(store.Document().Versions))
	}
	return true
}
