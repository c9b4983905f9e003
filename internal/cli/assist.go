package cli

import (
	"flag"
	"fmt"

	"github.com/tasklog/tasklog/internal/assist"
	"github.com/tasklog/tasklog/internal/config"
)

// assistCommand dispatches the planning-template subactions.
func assistCommand(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		args = []string{"status"}
	}
	action, rest := args[0], args[1:]

	switch action {
	case "init":
		return assistInit(cfg, rest)
	case "status":
		return assistStatus(cfg, rest)
	default:
		return fmt.Errorf("unknown assist action: %s", action)
	}
}

func assistInit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog assist init", flag.ContinueOnError)
	name := fs.String("name", "", "Project name (default: project directory name)")
	force := fs.Bool("force", false, "Overwrite existing template files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := assist.Init(cfg.ProjectRoot, *name, *force)
	if err != nil {
		return fmt.Errorf("initializing templates: %w", err)
	}
	fmt.Printf("Project: %s\n", res.ProjectName)
	for _, f := range res.Created {
		fmt.Printf("  created %s\n", f)
	}
	for _, f := range res.Skipped {
		fmt.Printf("  skipped %s (exists, use -force to overwrite)\n", f)
	}
	return nil
}

func assistStatus(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog assist status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	statuses, err := assist.Status(cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("reading template status: %w", err)
	}
	if *asJSON {
		return printJSON(statuses)
	}
	if len(statuses) == 0 {
		fmt.Println("No planning templates found. Run 'tasklog assist init' first.")
		return nil
	}
	for _, st := range statuses {
		if st.Enhanced {
			fmt.Printf("  ✅ %s\n", st.Name)
			continue
		}
		fmt.Printf("  ⚠️  %s (%d placeholders remaining)\n", st.Name, len(st.Placeholders))
	}
	return nil
}
