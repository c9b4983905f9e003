package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/export"
)

// exportCommand renders tasks and/or the changelog in a portable format.
func exportCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog export", flag.ContinueOnError)
	format := fs.String("format", export.FormatJSON, "Output format (json|csv|markdown|text)")
	todosOnly := fs.Bool("todos", false, "Export tasks only")
	changelogOnly := fs.Bool("changelog", false, "Export the changelog only")
	output := fs.String("output", "", "Write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *todosOnly && *changelogOnly {
		return fmt.Errorf("-todos and -changelog are mutually exclusive; omit both for a combined export")
	}

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}

	var rendered string
	switch {
	case *todosOnly:
		rendered, err = export.Todos(coord.Todos, *format)
	case *changelogOnly:
		rendered, err = export.Changelog(coord.Changelog, *format)
	default:
		if *format != export.FormatJSON {
			return fmt.Errorf("combined export supports json only; use -todos or -changelog for %s", *format)
		}
		rendered, err = export.CombinedJSON(coord.Todos, coord.Changelog)
	}
	if err != nil {
		return fmt.Errorf("rendering export: %w", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported to: %s\n", *output)
		return nil
	}
	fmt.Print(rendered)
	return nil
}
