package config

import (
	"os"
	"path/filepath"
)

// rootIndicators mark a directory as a project root.
var rootIndicators = []string{
	".git", "go.mod", "pyproject.toml", "setup.py", "package.json",
	"Cargo.toml", ".gitignore",
}

// DetectProjectRoot walks up from start looking for a project indicator and
// returns the first directory that has one, or start itself.
func DetectProjectRoot(start string) string {
	dir := start
	for {
		for _, indicator := range rootIndicators {
			if _, err := os.Stat(filepath.Join(dir, indicator)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
