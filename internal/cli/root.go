// Package cli implements the tasklog command line interface.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tasklog/tasklog/internal/changelog"
	"github.com/tasklog/tasklog/internal/config"
	"github.com/tasklog/tasklog/internal/gitrepo"
	"github.com/tasklog/tasklog/internal/project"
	"github.com/tasklog/tasklog/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasklog CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasklog", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionInfoCommand()
	}

	subcommand := "status"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "status":
		return statusCommand(ctx, cfg, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "task", "todo":
		return taskCommand(cfg, remainingArgs)
	case "dep", "deps":
		return depCommand(cfg, remainingArgs)
	case "version":
		return versionCommand(ctx, cfg, remainingArgs)
	case "changelog":
		return changelogCommand(cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "assist":
		return assistCommand(cfg, remainingArgs)
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStores opens both documents with the configured defaults.
func openStores(cfg *config.Config) (*project.Coordinator, error) {
	todos, err := todo.Open(cfg.TodoPath(), todo.Options{
		Categories:    cfg.Categories,
		Statuses:      cfg.Statuses,
		PriorityScale: cfg.PriorityScale,
	})
	if err != nil {
		return nil, fmt.Errorf("opening todo file: %w", err)
	}
	cl, err := changelog.Open(cfg.ChangelogPath(), cfg.InitialVersion)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	return project.New(todos, todo.NewGraph(todos), cl), nil
}

func openGit(cfg *config.Config) *gitrepo.Repo {
	return gitrepo.New(cfg.ProjectRoot, cfg.GitEnabled)
}

func versionInfoCommand() error {
	fmt.Printf("tasklog version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklog - Project task tracking and changelog management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklog [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  status               Show combined project status (default command)")
	fmt.Fprintln(w, "  init                 Create the todo and changelog documents")
	fmt.Fprintln(w, "  task <action>        Manage tasks (add|list|show|update|complete|delete)")
	fmt.Fprintln(w, "  dep <action>         Manage dependencies (add|rm|chain|blocked|unblocked)")
	fmt.Fprintln(w, "  version <action>     Manage versions (show|bump|tag|history)")
	fmt.Fprintln(w, "  changelog <action>   Manage the changelog (show|add|recent|export)")
	fmt.Fprintln(w, "  export               Export tasks and changelog data")
	fmt.Fprintln(w, "  serve                Start the REST API server")
	fmt.Fprintln(w, "  tui                  Launch the terminal task board")
	fmt.Fprintln(w, "  doctor               Validate documents and configuration")
	fmt.Fprintln(w, "  assist <action>      Manage planning templates (init|status)")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tasklog <command> -h' for command-specific options.")
}
