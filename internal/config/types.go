// Package config handles configuration loading and defaults.
//
// Values are resolved in priority order: built-in defaults, the user config
// file, the project config file, TASKLOG_* environment variables, CLI flags.
package config

import "path/filepath"

// Default values.
const (
	DefaultTodoFile       = "todo.json"
	DefaultChangelogFile  = "changelog.json"
	DefaultInitialVersion = "1.0.0"
	DefaultTagPrefix      = "v"
	DefaultServerAddr     = ":8377"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for tasklog.
type Config struct {
	// Paths. Relative document paths resolve against ProjectRoot.
	ProjectRoot   string `toml:"-"`
	TodoFile      string `toml:"todo_file"`
	ChangelogFile string `toml:"changelog_file"`

	// Document defaults applied when a todo document is created or is
	// missing sections.
	Categories    []string `toml:"categories"`
	Statuses      []string `toml:"statuses"`
	PriorityScale string   `toml:"priority_scale"`

	// Versioning.
	InitialVersion string `toml:"initial_version"`
	GitEnabled     bool   `toml:"git_enabled"`
	TagPrefix      string `toml:"tag_prefix"`

	// Server.
	ServerAddr string `toml:"server_addr"`

	// Logging.
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// TodoPath returns the absolute path of the todo document.
func (c *Config) TodoPath() string {
	return c.resolve(c.TodoFile)
}

// ChangelogPath returns the absolute path of the changelog document.
func (c *Config) ChangelogPath() string {
	return c.resolve(c.ChangelogFile)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.ProjectRoot, path)
}
