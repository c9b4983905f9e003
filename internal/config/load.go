package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from all sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/tasklog/tasklog.toml)
// 3. Project config file (tasklog.toml or .tasklog.toml in the project dir)
// 4. TASKLOG_* environment variables
// 5. CLI flags (registered on fs; they override everything)
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}
	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.TodoFile = DefaultTodoFile
	cfg.ChangelogFile = DefaultChangelogFile
	cfg.InitialVersion = DefaultInitialVersion
	cfg.GitEnabled = true
	cfg.TagPrefix = DefaultTagPrefix
	cfg.ServerAddr = DefaultServerAddr
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "tasklog", "tasklog.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func findProjectConfigFile() string {
	for _, name := range []string{"tasklog.toml", ".tasklog.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode toml: %w", err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("TASKLOG_PROJECT_DIR", &cfg.ProjectRoot)
	set("TASKLOG_TODO_FILE", &cfg.TodoFile)
	set("TASKLOG_CHANGELOG_FILE", &cfg.ChangelogFile)
	set("TASKLOG_INITIAL_VERSION", &cfg.InitialVersion)
	set("TASKLOG_TAG_PREFIX", &cfg.TagPrefix)
	set("TASKLOG_SERVER_ADDR", &cfg.ServerAddr)
	set("TASKLOG_LOG_LEVEL", &cfg.LogLevel)
	set("TASKLOG_LOG_FORMAT", &cfg.LogFormat)
	if v := os.Getenv("TASKLOG_GIT"); v == "0" || v == "false" {
		cfg.GitEnabled = false
	}
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.ProjectRoot, "project-dir", cfg.ProjectRoot, "Project directory (default: auto-detect)")
	fs.StringVar(&cfg.TodoFile, "todo-file", cfg.TodoFile, "Path to the todo document")
	fs.StringVar(&cfg.ChangelogFile, "changelog-file", cfg.ChangelogFile, "Path to the changelog document")
	fs.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "Address for the serve command")
	fs.StringVar(&cfg.TagPrefix, "tag-prefix", cfg.TagPrefix, "Git tag prefix")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	noGit := fs.Bool("no-git", false, "Disable git integration")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *noGit {
		cfg.GitEnabled = false
	}
	return nil
}

func finalize(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		cfg.ProjectRoot = DetectProjectRoot(cwd)
	}
	abs, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	cfg.ProjectRoot = abs
	return nil
}
