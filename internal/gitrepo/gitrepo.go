// Package gitrepo shells out to git for the small set of repository
// operations tasklog needs: tagging releases and reading a short status.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Repo runs git commands in a fixed working directory. A disabled repo
// rejects every operation with ErrDisabled so callers don't need their own
// git-enabled checks.
type Repo struct {
	dir     string
	enabled bool
}

// ErrDisabled is returned when git integration is turned off.
var ErrDisabled = fmt.Errorf("git integration is disabled")

// New returns a repo rooted at dir. When enabled is false every operation
// fails with ErrDisabled.
func New(dir string, enabled bool) *Repo {
	return &Repo{dir: dir, enabled: enabled}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	if !r.enabled {
		return "", ErrDisabled
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// Tag creates tag name on HEAD. A non-empty message creates an annotated
// tag; otherwise the tag is lightweight. With push set the tag is pushed to
// origin afterwards.
func (r *Repo) Tag(ctx context.Context, name, message string, push bool) error {
	args := []string{"tag", name}
	if message != "" {
		args = []string{"tag", "-a", name, "-m", message}
	}
	if _, err := r.run(ctx, args...); err != nil {
		return err
	}
	log.Debug().Str("tag", name).Msg("created git tag")

	if push {
		if _, err := r.run(ctx, "push", "origin", name); err != nil {
			return err
		}
		log.Debug().Str("tag", name).Msg("pushed git tag")
	}
	return nil
}

// Status is a short snapshot of the repository state.
type Status struct {
	Branch     string   `json:"branch"`
	LastCommit string   `json:"last_commit"`
	Dirty      bool     `json:"dirty"`
	RecentTags []string `json:"recent_tags"`
}

// Status reads the current branch, latest commit subject, whether the
// worktree has uncommitted changes, and the five highest tags by version
// refname.
func (r *Repo) Status(ctx context.Context) (*Status, error) {
	branch, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, err
	}
	st := &Status{Branch: branch}

	if commit, err := r.run(ctx, "log", "-1", "--format=%h %s"); err == nil {
		st.LastCommit = commit
	}
	if porcelain, err := r.run(ctx, "status", "--porcelain"); err == nil {
		st.Dirty = porcelain != ""
	}
	if tags, err := r.run(ctx, "tag", "--sort=-v:refname"); err == nil && tags != "" {
		all := strings.Split(tags, "\n")
		if len(all) > 5 {
			all = all[:5]
		}
		st.RecentTags = all
	}
	return st, nil
}

// Enabled reports whether git integration is on.
func (r *Repo) Enabled() bool { return r.enabled }
