package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/tasklog/tasklog/internal/config"
)

// statusCommand prints the combined project report.
func statusCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}
	report := coord.Status()
	if *asJSON {
		return printJSON(report)
	}

	headerColor.Printf("Project: %s\n", cfg.ProjectRoot)
	fmt.Println()

	headerColor.Println("Tasks")
	fmt.Printf("  Total: %d\n", report.Todos.Total)
	for _, status := range sortedKeys(report.Todos.ByStatus) {
		fmt.Printf("  %-12s %d\n", status+":", report.Todos.ByStatus[status])
	}
	fmt.Printf("  High priority: %d  Blocked: %d  Ready: %d\n",
		report.Todos.HighPriority, report.BlockedCount, report.UnblockedCount)
	fmt.Println()

	headerColor.Println("Version")
	fmt.Printf("  Current: %s", report.CurrentVersion)
	if report.VersionDate != "" {
		fmt.Printf(" (%s)", report.VersionDate)
	}
	fmt.Println()
	fmt.Printf("  Versions: %d  Changes in current: %d  Changes last 7 days: %d\n",
		report.TotalVersions, report.CurrentChanges, report.RecentChanges)

	if cfg.GitEnabled {
		if st, err := openGit(cfg).Status(ctx); err == nil {
			fmt.Println()
			headerColor.Println("Git")
			fmt.Printf("  Branch: %s", st.Branch)
			if st.Dirty {
				fmt.Print("  (dirty)")
			}
			fmt.Println()
			if st.LastCommit != "" {
				fmt.Printf("  Last commit: %s\n", st.LastCommit)
			}
			if len(st.RecentTags) > 0 {
				fmt.Printf("  Recent tags: %v\n", st.RecentTags)
			}
		}
	}
	return nil
}

// initCommand creates both documents with the configured defaults. Opening
// is creation; an existing document is left untouched.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklog init", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Todo file:      %s\n", coord.Todos.Path())
	fmt.Printf("Changelog file: %s (version %s)\n", coord.Changelog.Path(), coord.Changelog.Current())
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
