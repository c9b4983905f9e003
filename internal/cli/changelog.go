package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/export"
	"github.com/tasklog/tasklog/internal/project"
)

// changelogCommand dispatches the changelog subactions.
func changelogCommand(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	action, rest := args[0], args[1:]

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}

	switch action {
	case "show":
		return changelogShow(coord, rest)
	case "add":
		return changelogAdd(coord, rest)
	case "recent":
		return changelogRecent(coord, rest)
	case "export":
		return changelogExport(coord, rest)
	default:
		return fmt.Errorf("unknown changelog action: %s", action)
	}
}

func changelogShow(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog changelog show", flag.ContinueOnError)
	version := fs.String("version", "", "Show a single version (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *version != "" {
		info, ok := coord.Changelog.Info(*version)
		if !ok {
			return fmt.Errorf("version %s not found", *version)
		}
		headerColor.Printf("Version %s (%s)\n", *version, info.Date)
		for _, c := range info.Changes {
			printChange(c)
		}
		return nil
	}
	fmt.Print(coord.Changelog.ExportText())
	return nil
}

func changelogAdd(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog changelog add", flag.ContinueOnError)
	changeType := fs.String("type", "feature", "Change type (feature|enhancement|bug|refactor|docs|test)")
	version := fs.String("version", "", "Target version (default: current)")
	todoID := fs.Int("todo", 0, "Related task id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	description := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if description == "" {
		return fmt.Errorf("changelog add requires a description")
	}

	req := changelog.ChangeRequest{
		Type:        *changeType,
		Description: description,
		Version:     *version,
	}
	if *todoID != 0 {
		req.TodoID = todoID
	}
	if err := coord.Changelog.AddChange(req); err != nil {
		return fmt.Errorf("adding change: %w", err)
	}
	target := *version
	if target == "" {
		target = coord.Changelog.Current()
	}
	fmt.Printf("Added %s change to version %s\n", *changeType, target)
	return nil
}

func changelogRecent(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog changelog recent", flag.ContinueOnError)
	days := fs.Int("days", 7, "Window in days")
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	recent := coord.Changelog.Recent(*days)
	if *asJSON {
		return printJSON(recent)
	}
	if len(recent) == 0 {
		fmt.Printf("No changes in the last %d days.\n", *days)
		return nil
	}
	headerColor.Printf("Changes in the last %d days:\n", *days)
	for _, vc := range recent {
		fmt.Printf("  %s %s  ", vc.Version, vc.Date)
		printChange(vc.Change)
	}
	return nil
}

func changelogExport(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog changelog export", flag.ContinueOnError)
	format := fs.String("format", export.FormatMarkdown, "Output format (json|markdown|text)")
	output := fs.String("output", "", "Write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rendered, err := export.Changelog(coord.Changelog, *format)
	if err != nil {
		return fmt.Errorf("rendering changelog: %w", err)
	}
	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("writing changelog export: %w", err)
		}
		fmt.Printf("Exported to: %s\n", *output)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func printChange(c changelog.Change) {
	if c.TodoID != nil {
		fmt.Printf("  - %s: %s (#%d)\n", c.Type, c.Description, *c.TodoID)
		return
	}
	fmt.Printf("  - %s: %s\n", c.Type, c.Description)
}
