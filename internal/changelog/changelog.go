// Package changelog owns the version document: semantic versions, their
// change records, and version-bump arithmetic.
//
// The document format (changelog.json) follows schema/changelog.schema.json:
//
//	{
//	  "current_version": "1.2.0",
//	  "versions": {
//	    "1.2.0": {
//	      "date": "2024-01-01",
//	      "changes": [
//	        { "type": "feature", "description": "Add login", "todo_id": 7 }
//	      ]
//	    }
//	  }
//	}
//
// The store is independent of the task store; change records reference tasks
// only by the optional todo_id back-reference. Persistence is the same
// full-rewrite-on-mutation model as the todo document.
package changelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used in version entries.
const DateLayout = "2006-01-02"

// DefaultInitialVersion seeds a fresh changelog document.
const DefaultInitialVersion = "1.0.0"

// Change is a single change record under a version. Extra carries ad-hoc
// custom fields (for example todo_priority and todo_category on records
// created from a completed task); they are flattened into the change object
// on disk.
type Change struct {
	Type        string
	Description string
	TodoID      *int
	Extra       map[string]any
}

type changeJSON struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	TodoID      *int   `json:"todo_id"`
}

var fixedChangeKeys = map[string]bool{
	"type": true, "description": true, "todo_id": true,
}

// MarshalJSON flattens the fixed fields and Extra into one object. The
// todo_id key is always present, null when the change has no task
// back-reference.
func (c Change) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		if !fixedChangeKeys[k] {
			m[k] = v
		}
	}
	m["type"] = c.Type
	m["description"] = c.Description
	if c.TodoID != nil {
		m["todo_id"] = *c.TodoID
	} else {
		m["todo_id"] = nil
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits a change object into the fixed fields and Extra.
func (c *Change) UnmarshalJSON(data []byte) error {
	var fixed changeJSON
	if err := json.Unmarshal(data, &fixed); err != nil {
		return fmt.Errorf("parse change: %w", err)
	}
	*c = Change{Type: fixed.Type, Description: fixed.Description, TodoID: fixed.TodoID}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse change fields: %w", err)
	}
	for key, val := range raw {
		if fixedChangeKeys[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return fmt.Errorf("parse change field %q: %w", key, err)
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = v
	}
	return nil
}

// Version is one released (or in-progress) version entry.
type Version struct {
	Date    string   `json:"date"`
	Changes []Change `json:"changes"`
}

// File is the on-disk changelog document.
type File struct {
	CurrentVersion string              `json:"current_version"`
	Versions       map[string]*Version `json:"versions"`
}

// Store holds the changelog document. Like the todo store it loads once and
// rewrites the whole document on every successful mutation, keeping the
// in-memory mutation when the rewrite fails.
type Store struct {
	path string
	doc  *File
}

// Open loads the changelog at path, creating it when missing with
// initialVersion (or DefaultInitialVersion) and a seed "initial release"
// entry.
func Open(path, initialVersion string) (*Store, error) {
	if initialVersion == "" {
		initialVersion = DefaultInitialVersion
	}
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read changelog file: %w", err)
		}
		s.doc = &File{
			CurrentVersion: initialVersion,
			Versions: map[string]*Version{
				initialVersion: {
					Date: time.Now().Format(DateLayout),
					Changes: []Change{
						{Type: "feature", Description: "Initial release"},
					},
				},
			},
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	var doc File
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse changelog file: %w", err)
	}
	if doc.CurrentVersion == "" {
		doc.CurrentVersion = initialVersion
	}
	if doc.Versions == nil {
		doc.Versions = map[string]*Version{}
	}
	s.doc = &doc
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Document returns the in-memory document for validation and export.
func (s *Store) Document() *File {
	return s.doc
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal changelog file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create changelog dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write changelog file: %w", err)
	}
	return nil
}

// Current returns the current version string.
func (s *Store) Current() string {
	return s.doc.CurrentVersion
}

// Info returns the entry for a version; an empty version means the current
// one.
func (s *Store) Info(version string) (Version, bool) {
	if version == "" {
		version = s.doc.CurrentVersion
	}
	v, ok := s.doc.Versions[version]
	if !ok {
		return Version{}, false
	}
	return *v, true
}

// Versions returns all version numbers sorted by semantic components,
// newest first when desc is set. When any version does not parse, the whole
// list falls back to lexicographic order.
func (s *Store) Versions(desc bool) []string {
	versions := make([]string, 0, len(s.doc.Versions))
	for v := range s.doc.Versions {
		versions = append(versions, v)
	}

	semantic := true
	parsed := make(map[string][3]int, len(versions))
	for _, v := range versions {
		parts, err := parseVersion(v)
		if err != nil {
			semantic = false
			break
		}
		parsed[v] = parts
	}

	less := func(a, b string) bool {
		if !semantic {
			return a < b
		}
		pa, pb := parsed[a], parsed[b]
		for i := 0; i < 3; i++ {
			if pa[i] != pb[i] {
				return pa[i] < pb[i]
			}
		}
		return a < b
	}
	sort.Slice(versions, func(i, j int) bool {
		if desc {
			return less(versions[j], versions[i])
		}
		return less(versions[i], versions[j])
	})
	return versions
}

// VersionedChange is a change record annotated with the version that carries
// it.
type VersionedChange struct {
	Change
	Version string
	Date    string
}

// Recent returns every change from versions dated within the last N days,
// newest first.
func (s *Store) Recent(days int) []VersionedChange {
	now := time.Now()
	var out []VersionedChange

	for version, entry := range s.doc.Versions {
		date, err := time.Parse(DateLayout, entry.Date)
		if err != nil {
			continue
		}
		if int(now.Sub(date).Hours()/24) > days {
			continue
		}
		for _, change := range entry.Changes {
			out = append(out, VersionedChange{
				Change:  change,
				Version: version,
				Date:    entry.Date,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Version > out[j].Version
	})
	return out
}

// ChangeRequest carries the fields for AddChange. An empty Version targets
// the current version; the version bucket is created on demand.
type ChangeRequest struct {
	Type        string
	Description string
	TodoID      *int
	Version     string
	Fields      map[string]any
}

// AddChange appends a change record to a version.
func (s *Store) AddChange(req ChangeRequest) error {
	version := req.Version
	if version == "" {
		version = s.doc.CurrentVersion
	}
	entry, ok := s.doc.Versions[version]
	if !ok {
		entry = &Version{Date: time.Now().Format(DateLayout)}
		s.doc.Versions[version] = entry
	}

	change := Change{
		Type:        req.Type,
		Description: req.Description,
		TodoID:      req.TodoID,
	}
	for k, v := range req.Fields {
		if change.Extra == nil {
			change.Extra = make(map[string]any)
		}
		change.Extra[k] = v
	}
	entry.Changes = append(entry.Changes, change)
	return s.save()
}

// BumpKind selects which semantic component a bump advances.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

// BumpForChangeType maps a change type to its bump severity: feature is a
// minor bump, breaking and major are major bumps, everything else is a
// patch.
func BumpForChangeType(changeType string) BumpKind {
	switch changeType {
	case "feature":
		return BumpMinor
	case "breaking", "major":
		return BumpMajor
	default:
		return BumpPatch
	}
}

// Bump creates the next version, records message (when given) as a docs
// change under it, and advances current_version. It returns the new version
// number; when the rewrite fails it returns the previous version alongside
// the error.
func (s *Store) Bump(kind BumpKind, message string) (string, error) {
	previous := s.doc.CurrentVersion
	next := Increment(previous, kind)

	entry := &Version{Date: time.Now().Format(DateLayout), Changes: []Change{}}
	if message != "" {
		entry.Changes = append(entry.Changes, Change{Type: "docs", Description: message})
	}
	s.doc.Versions[next] = entry
	s.doc.CurrentVersion = next

	if err := s.save(); err != nil {
		return previous, err
	}
	return next, nil
}

// CreateVersion creates a new version entry with the given changes. A
// non-empty custom version overrides the bump arithmetic.
func (s *Store) CreateVersion(kind BumpKind, custom string, changes []Change) (string, error) {
	previous := s.doc.CurrentVersion
	next := custom
	if next == "" {
		next = Increment(previous, kind)
	}
	if changes == nil {
		changes = []Change{}
	}

	s.doc.Versions[next] = &Version{
		Date:    time.Now().Format(DateLayout),
		Changes: changes,
	}
	s.doc.CurrentVersion = next

	if err := s.save(); err != nil {
		return previous, err
	}
	return next, nil
}

// Increment advances a version string by the given kind. Versions with one
// or two components are padded with zeros; an unparseable version falls back
// to "1.0.1".
func Increment(version string, kind BumpKind) string {
	parts, err := parseVersion(version)
	if err != nil {
		return "1.0.1"
	}
	major, minor, patch := parts[0], parts[1], parts[2]

	switch kind {
	case BumpMajor:
		major++
		minor, patch = 0, 0
	case BumpMinor:
		minor++
		patch = 0
	default:
		patch++
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// parseVersion splits a lenient semantic version: 1, 2 or 3 dot-separated
// integer components.
func parseVersion(version string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return out, fmt.Errorf("invalid version %q: %w", version, err)
		}
		out[i] = n
	}
	return out, nil
}

// TagMessage builds the annotated tag message for a version: a heading plus
// one line per change.
func (s *Store) TagMessage(version string) string {
	info, ok := s.Info(version)
	if !ok || len(info.Changes) == 0 {
		return fmt.Sprintf("Version %s", version)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Version %s\n\n", version)
	for _, change := range info.Changes {
		fmt.Fprintf(&b, "- %s: %s\n", change.Type, change.Description)
	}
	return b.String()
}
