package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/project"
)

// versionCommand dispatches the version subactions.
func versionCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	action, rest := args[0], args[1:]

	coord, err := openStores(cfg)
	if err != nil {
		return err
	}

	switch action {
	case "show", "current":
		return versionShow(coord, rest)
	case "bump":
		return versionBump(coord, rest)
	case "tag":
		return versionTag(ctx, cfg, coord, rest)
	case "history", "list":
		return versionHistory(coord, rest)
	default:
		return fmt.Errorf("unknown version action: %s", action)
	}
}

func versionShow(coord *project.Coordinator, _ []string) error {
	current := coord.Changelog.Current()
	fmt.Printf("Current version: %s\n", current)
	if info, ok := coord.Changelog.Info(""); ok {
		fmt.Printf("Released: %s (%d changes)\n", info.Date, len(info.Changes))
	}
	return nil
}

func versionBump(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog version bump", flag.ContinueOnError)
	message := fs.String("message", "", "Recorded as a docs change on the previous version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) != 1 {
		return fmt.Errorf("expected bump type: major|minor|patch")
	}
	kind := changelog.BumpKind(remaining[0])
	switch kind {
	case changelog.BumpMajor, changelog.BumpMinor, changelog.BumpPatch:
	default:
		return fmt.Errorf("bump type must be major, minor, or patch, got %q", remaining[0])
	}

	next, err := coord.Changelog.Bump(kind, *message)
	if err != nil {
		return fmt.Errorf("bumping version: %w", err)
	}
	fmt.Printf("Version bumped to: %s\n", next)
	return nil
}

func versionTag(ctx context.Context, cfg *config.Config, coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog version tag", flag.ContinueOnError)
	push := fs.Bool("push", false, "Push the tag to origin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current := coord.Changelog.Current()
	tagName := cfg.TagPrefix + current
	message := coord.Changelog.TagMessage(current)

	repo := openGit(cfg)
	if err := repo.Tag(ctx, tagName, message, *push); err != nil {
		return fmt.Errorf("tagging %s: %w", tagName, err)
	}
	fmt.Printf("Created tag: %s\n", tagName)
	if *push {
		fmt.Printf("Pushed tag: %s\n", tagName)
	}
	return nil
}

func versionHistory(coord *project.Coordinator, args []string) error {
	fs := flag.NewFlagSet("tasklog version history", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	versions := coord.Changelog.Versions(true)
	if *asJSON {
		return printJSON(versions)
	}
	current := coord.Changelog.Current()
	for _, v := range versions {
		marker := " "
		if v == current {
			marker = "*"
		}
		if info, ok := coord.Changelog.Info(v); ok {
			fmt.Printf("%s %-10s %s  (%d changes)\n", marker, v, info.Date, len(info.Changes))
		} else {
			fmt.Printf("%s %-10s\n", marker, v)
		}
	}
	return nil
}
