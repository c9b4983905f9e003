// Package assist scaffolds structured planning documents with marked
// placeholder sections that an external AI tool (or a human) fills in later.
// Files live under project_management/compass/ in the project root.
package assist

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// compassDir is where scaffolded documents are written, relative to the
// project root.
const compassDir = "project_management/compass"

// templateFiles maps embedded template names to output file names.
var templateFiles = map[string]string{
	"project_intent.md.tmpl":      "project_intent.md",
	"learning_objectives.md.tmpl": "learning_objectives.md",
	"success_criteria.json.tmpl":  "success_criteria.json",
}

var placeholderPattern = regexp.MustCompile(`\{ai_[^}]+\}`)

// InitResult describes what Init created or skipped.
type InitResult struct {
	ProjectName string   `json:"project_name"`
	Created     []string `json:"created_files"`
	Skipped     []string `json:"skipped_files"`
}

type templateData struct {
	ProjectName string
	Generated   string
}

// Init writes the planning templates under root. Existing files are left
// alone unless force is set. The project name defaults to the root
// directory's base name.
func Init(root, projectName string, force bool) (*InitResult, error) {
	if projectName == "" {
		projectName = filepath.Base(root)
	}
	dir := filepath.Join(root, compassDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", compassDir, err)
	}

	data := templateData{
		ProjectName: projectName,
		Generated:   time.Now().Format("2006-01-02 15:04:05"),
	}
	result := &InitResult{ProjectName: projectName}

	names := make([]string, 0, len(templateFiles))
	for name := range templateFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := filepath.Join(dir, templateFiles[name])
		if _, err := os.Stat(target); err == nil && !force {
			result.Skipped = append(result.Skipped, templateFiles[name])
			continue
		}
		rendered, err := render(name, data)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(target, []byte(rendered), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
		result.Created = append(result.Created, templateFiles[name])
	}
	log.Debug().Str("project", projectName).Strs("created", result.Created).Msg("assist templates initialized")
	return result, nil
}

func render(name string, data templateData) (string, error) {
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return sb.String(), nil
}

// Placeholders extracts the unfilled {ai_*} markers from content, in order
// of first appearance.
func Placeholders(content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderPattern.FindAllString(content, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// FileStatus reports the enhancement state of one scaffolded document.
type FileStatus struct {
	Name         string   `json:"name"`
	Placeholders []string `json:"placeholders,omitempty"`
	Enhanced     bool     `json:"enhanced"`
}

// Status inspects the scaffolded documents under root and reports which
// still carry unfilled placeholders. Missing files are omitted.
func Status(root string) ([]FileStatus, error) {
	dir := filepath.Join(root, compassDir)
	var out []FileStatus
	for _, target := range sortedTargets() {
		data, err := os.ReadFile(filepath.Join(dir, target))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", target, err)
		}
		remaining := Placeholders(string(data))
		out = append(out, FileStatus{
			Name:         target,
			Placeholders: remaining,
			Enhanced:     len(remaining) == 0,
		})
	}
	return out, nil
}

func sortedTargets() []string {
	targets := make([]string, 0, len(templateFiles))
	for _, t := range templateFiles {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
