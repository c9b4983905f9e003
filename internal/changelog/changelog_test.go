package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "changelog.json"), "")
	require.NoError(t, err)
	return s
}

func TestOpenSeedsInitialVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.json")
	s, err := Open(path, "")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", s.Current())
	info, ok := s.Info("")
	require.True(t, ok)
	assert.Equal(t, time.Now().Format(DateLayout), info.Date)
	require.Len(t, info.Changes, 1)
	assert.Equal(t, "feature", info.Changes[0].Type)
	assert.Nil(t, info.Changes[0].TodoID)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		version string
		kind    BumpKind
		want    string
	}{
		{"1.2.3", BumpPatch, "1.2.4"},
		{"1.2.3", BumpMinor, "1.3.0"},
		{"1.2.3", BumpMajor, "2.0.0"},
		{"1.2", BumpPatch, "1.2.1"},
		{"2", BumpMinor, "2.1.0"},
		{"1.2.3.4", BumpPatch, "1.2.4"},
		{"garbage", BumpPatch, "1.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.version+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, Increment(tt.version, tt.kind))
		})
	}
}

func TestBumpForChangeType(t *testing.T) {
	assert.Equal(t, BumpMinor, BumpForChangeType("feature"))
	assert.Equal(t, BumpMajor, BumpForChangeType("breaking"))
	assert.Equal(t, BumpMajor, BumpForChangeType("major"))
	assert.Equal(t, BumpPatch, BumpForChangeType("bug"))
	assert.Equal(t, BumpPatch, BumpForChangeType("anything"))
}

func TestBumpAdvancesCurrentVersion(t *testing.T) {
	s := newTestStore(t)

	next, err := s.Bump(BumpMinor, "started 1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", next)
	assert.Equal(t, "1.1.0", s.Current())

	info, ok := s.Info("1.1.0")
	require.True(t, ok)
	require.Len(t, info.Changes, 1)
	assert.Equal(t, "docs", info.Changes[0].Type)
	assert.Equal(t, "started 1.1.0", info.Changes[0].Description)
}

func TestBumpReturnsPreviousOnSaveFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "changelog.json")
	s, err := Open(path, "")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0755))

	got, err := s.Bump(BumpPatch, "")
	require.Error(t, err)
	assert.Equal(t, "1.0.0", got)
	// The in-memory document still carries the bump.
	assert.Equal(t, "1.0.1", s.Current())
}

func TestAddChangeCreatesVersionBucket(t *testing.T) {
	s := newTestStore(t)

	id := 7
	err := s.AddChange(ChangeRequest{
		Type:        "bug",
		Description: "fix crash",
		TodoID:      &id,
		Version:     "9.9.9",
		Fields:      map[string]any{"todo_priority": 8},
	})
	require.NoError(t, err)

	info, ok := s.Info("9.9.9")
	require.True(t, ok)
	require.Len(t, info.Changes, 1)
	assert.Equal(t, 7, *info.Changes[0].TodoID)
	assert.Equal(t, 8, info.Changes[0].Extra["todo_priority"])
	// Adding to an unknown version creates it; current_version is untouched.
	assert.Equal(t, "1.0.0", s.Current())
}

func TestVersionsSemanticOrder(t *testing.T) {
	s := newTestStore(t)
	for _, v := range []string{"1.10.0", "1.2.0", "0.9.1", "2.0.0"} {
		require.NoError(t, s.AddChange(ChangeRequest{Type: "docs", Description: "x", Version: v}))
	}

	assert.Equal(t, []string{"2.0.0", "1.10.0", "1.2.0", "1.0.0", "0.9.1"}, s.Versions(true))
	assert.Equal(t, []string{"0.9.1", "1.0.0", "1.2.0", "1.10.0", "2.0.0"}, s.Versions(false))
}

func TestVersionsLexicographicFallback(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddChange(ChangeRequest{Type: "docs", Description: "x", Version: "beta"}))

	assert.Equal(t, []string{"1.0.0", "beta"}, s.Versions(false))
}

func TestRecent(t *testing.T) {
	s := newTestStore(t)

	// Backdate an old version beyond the window.
	s.Document().Versions["0.1.0"] = &Version{
		Date:    time.Now().AddDate(0, 0, -30).Format(DateLayout),
		Changes: []Change{{Type: "feature", Description: "old"}},
	}

	recent := s.Recent(7)
	require.Len(t, recent, 1)
	assert.Equal(t, "1.0.0", recent[0].Version)

	recent = s.Recent(60)
	assert.Len(t, recent, 2)
	assert.Equal(t, "1.0.0", recent[0].Version, "newest first")
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.json")
	s, err := Open(path, "0.1.0")
	require.NoError(t, err)

	id := 3
	require.NoError(t, s.AddChange(ChangeRequest{
		Type:        "feature",
		Description: "add thing",
		TodoID:      &id,
		Fields:      map[string]any{"todo_category": "feature"},
	}))
	_, err = s.Bump(BumpMinor, "next")
	require.NoError(t, err)

	reloaded, err := Open(path, "")
	require.NoError(t, err)
	assert.Equal(t, s.Current(), reloaded.Current())
	info, ok := reloaded.Info("0.1.0")
	require.True(t, ok)
	require.Len(t, info.Changes, 2)
	last := info.Changes[1]
	assert.Equal(t, 3, *last.TodoID)
	assert.Equal(t, "feature", last.Extra["todo_category"])
}

func TestExportMarkdown(t *testing.T) {
	s := newTestStore(t)
	id := 4
	require.NoError(t, s.AddChange(ChangeRequest{Type: "bug", Description: "fix it", TodoID: &id}))

	md := s.ExportMarkdown()
	assert.Contains(t, md, "# Changelog")
	assert.Contains(t, md, "Current Version: **1.0.0**")
	assert.Contains(t, md, "## [1.0.0]")
	assert.Contains(t, md, "### Feature")
	assert.Contains(t, md, "### Bug")
	assert.Contains(t, md, "- fix it (#4)")
	// Feature group renders before bug.
	assert.Less(t, strings.Index(md, "### Feature"), strings.Index(md, "### Bug"))
}

func TestExportText(t *testing.T) {
	s := newTestStore(t)
	text := s.ExportText()
	assert.Contains(t, text, "Changelog - Current Version: 1.0.0")
	assert.Contains(t, text, "feature: Initial release")
}

func TestTagMessage(t *testing.T) {
	s := newTestStore(t)
	msg := s.TagMessage("1.0.0")
	assert.Contains(t, msg, "Version 1.0.0")
	assert.Contains(t, msg, "- feature: Initial release")

	assert.Equal(t, "Version 3.0.0", s.TagMessage("3.0.0"))
}

func TestValidate(t *testing.T) {
	s := newTestStore(t)
	result := s.Validate()
	assert.True(t, result.Valid)
	assert.True(t, result.UsedSchema)

	s.Document().CurrentVersion = "9.9.9"
	result = s.Validate()
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}
