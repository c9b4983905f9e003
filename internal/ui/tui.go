// Package ui provides an optional terminal dashboard over the task store.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasklog/tasklog/internal/todo"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Faint(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Run starts the read-only task board. The board reloads the todo document
// on a fixed interval so edits from other processes show up.
func Run(ctx context.Context, todoPath string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newBoardModel(todoPath)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type boardModel struct {
	todoPath     string
	loadErr      error
	data         *boardData
	filter       string
	showHelp     bool
	tickInterval time.Duration
}

type boardData struct {
	statuses []string
	counts   map[string]int
	tasks    []todo.Task
	blocked  map[int]bool
}

type tickMsg time.Time

func newBoardModel(todoPath string) *boardModel {
	return &boardModel{
		todoPath:     todoPath,
		tickInterval: 2 * time.Second,
	}
}

func (m *boardModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "0":
			m.filter = ""
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if m.data != nil {
				idx := int(msg.String()[0]-'0') - 1
				if idx < len(m.data.statuses) {
					m.filter = m.data.statuses[idx]
				}
			}
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *boardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasklog") + "\n\n")

	if m.showHelp {
		writeHelp(&b, m.data)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString("Error loading todo file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != "" {
		b.WriteString(faintStyle.Render(fmt.Sprintf("Filter: %s (0 to clear)", m.filter)) + "\n\n")
	}

	writeOverview(&b, m.data)
	writeBoard(&b, m.data, m.filter)
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *boardModel) refresh() {
	store, err := todo.Open(m.todoPath, todo.Options{})
	if err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil

	graph := todo.NewGraph(store)
	data := &boardData{
		statuses: store.Statuses(),
		counts:   make(map[string]int),
		tasks:    store.List(todo.Filter{}),
		blocked:  make(map[int]bool),
	}
	for _, task := range data.tasks {
		data.counts[task.Status]++
	}
	for _, task := range graph.Blocked() {
		data.blocked[task.ID] = true
	}
	m.data = data
}

func writeOverview(b *strings.Builder, data *boardData) {
	b.WriteString(sectionStyle.Render("Overview") + "\n\n  ")
	parts := make([]string, 0, len(data.statuses)+1)
	for _, status := range data.statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", status, data.counts[status]))
	}
	parts = append(parts, fmt.Sprintf("blocked: %d", len(data.blocked)))
	b.WriteString(strings.Join(parts, "  ") + "\n\n")
}

func writeBoard(b *strings.Builder, data *boardData, filter string) {
	for _, status := range data.statuses {
		if filter != "" && status != filter {
			continue
		}
		var lines []string
		for _, task := range data.tasks {
			if task.Status != status {
				continue
			}
			lines = append(lines, formatTask(task, data.blocked[task.ID]))
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString(sectionStyle.Render(titleCase(status)) + "\n\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
}

func writeHelp(b *strings.Builder, data *boardData) {
	b.WriteString(sectionStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh now\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	if data != nil {
		for i, status := range data.statuses {
			if i >= 9 {
				break
			}
			fmt.Fprintf(b, "  %d            Filter by %s\n", i+1, status)
		}
	}
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(faintStyle.Render(fmt.Sprintf("h for help | q to quit | refreshing every %s", interval)) + "\n")
}

func formatTask(t todo.Task, blocked bool) string {
	line := fmt.Sprintf("  #%-4d (P%d) %s", t.ID, t.Priority, t.Title)
	switch {
	case blocked:
		return blockedStyle.Render(line + "  [blocked]")
	case t.Status == todo.StatusComplete:
		return doneStyle.Render(line)
	default:
		return line
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
