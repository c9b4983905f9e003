package changelog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// typeOrder is the presentation order for change types in exports; types
// outside the list follow in document order.
var typeOrder = []string{"feature", "enhancement", "bug", "refactor", "docs", "test"}

// ExportJSON renders the whole changelog document as indented JSON.
func (s *Store) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal changelog: %w", err)
	}
	return string(data), nil
}

// ExportMarkdown renders the changelog as a markdown document, newest
// version first, changes grouped by type.
func (s *Store) ExportMarkdown() string {
	var b strings.Builder
	b.WriteString("# Changelog\n\n")
	fmt.Fprintf(&b, "Current Version: **%s**\n\n", s.Current())

	for _, version := range s.Versions(true) {
		info, ok := s.Info(version)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## [%s] - %s\n\n", version, info.Date)

		byType := make(map[string][]Change)
		var extraTypes []string
		for _, change := range info.Changes {
			if _, seen := byType[change.Type]; !seen && !isOrderedType(change.Type) {
				extraTypes = append(extraTypes, change.Type)
			}
			byType[change.Type] = append(byType[change.Type], change)
		}

		for _, typ := range append(append([]string{}, typeOrder...), extraTypes...) {
			changes, ok := byType[typ]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "### %s\n", titleCase(typ))
			for _, change := range changes {
				b.WriteString("- " + change.Description + todoRef(change) + "\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ExportText renders the changelog as plain text.
func (s *Store) ExportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Changelog - Current Version: %s\n", s.Current())
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, version := range s.Versions(true) {
		info, ok := s.Info(version)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s (%s)\n", version, info.Date)
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, change := range info.Changes {
			fmt.Fprintf(&b, "  %s: %s%s\n", change.Type, change.Description, todoRef(change))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func todoRef(c Change) string {
	if c.TodoID == nil {
		return ""
	}
	return fmt.Sprintf(" (#%d)", *c.TodoID)
}

func isOrderedType(typ string) bool {
	for _, t := range typeOrder {
		if t == typ {
			return true
		}
	}
	return false
}

// titleCase capitalizes the first letter; change types are plain ASCII
// words.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
