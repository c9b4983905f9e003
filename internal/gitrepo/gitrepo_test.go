package gitrepo

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledRepo(t *testing.T) {
	r := New(t.TempDir(), false)
	assert.False(t, r.Enabled())

	err := r.Tag(context.Background(), "v1.0.0", "", false)
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = r.Status(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTagAndStatus(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	ctx := context.Background()

	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "test"},
		{"commit", "--allow-empty", "-m", "initial commit"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}

	r := New(dir, true)
	require.NoError(t, r.Tag(ctx, "v1.0.0", "Version 1.0.0", false))

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Branch)
	assert.Contains(t, st.LastCommit, "initial commit")
	assert.False(t, st.Dirty)
	assert.Equal(t, []string{"v1.0.0"}, st.RecentTags)

	// Tagging the same name twice fails with git's own error attached.
	err = r.Tag(ctx, "v1.0.0", "", false)
	assert.Error(t, err)
}
