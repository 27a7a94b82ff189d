package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/depdistill/pkg/analyzer"
)

func browseResult() *analyzer.Result {
	return &analyzer.Result{
		RootPath: "App.sln",
		Projects: analyzer.Some(analyzer.Project{
			Name: "Web",
			TargetFrameworks: analyzer.Some(analyzer.Framework{
				Name: "net8.0",
				Dependencies: analyzer.Some(
					analyzer.Dependency{Name: "Serilog.AspNetCore"},
					analyzer.Dependency{Name: "Newtonsoft.Json"},
					analyzer.Dependency{Name: "Serilog"},
				),
			}),
		}),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m TreeModel, keys ...string) TreeModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(TreeModel)
	}
	return m
}

func TestTreeModelLines(t *testing.T) {
	m := NewTreeModel("App.sln", browseResult())
	if len(m.Lines) < 5 {
		t.Fatalf("lines = %q", m.Lines)
	}
	if !strings.Contains(m.View(), "Newtonsoft.Json") {
		t.Errorf("view missing dependency:\n%s", m.View())
	}
}

func TestTreeModelScroll(t *testing.T) {
	m := NewTreeModel("App.sln", browseResult())
	next, _ := m.Update(tea.WindowSizeMsg{Height: 8})
	m = next.(TreeModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want minimum 5", m.Height)
	}

	m = press(m, "G")
	if m.Cursor != len(m.Lines)-1 {
		t.Errorf("Cursor = %d, want last line", m.Cursor)
	}
	if m.Offset != m.Cursor-m.Height+1 {
		t.Errorf("Offset = %d, cursor not visible", m.Offset)
	}

	m = press(m, "g", "k")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("Cursor, Offset = %d, %d, want 0, 0", m.Cursor, m.Offset)
	}
}

func TestTreeModelSearch(t *testing.T) {
	m := NewTreeModel("App.sln", browseResult())
	m = press(m, "/", "s", "e", "r", "i")
	if !m.searching {
		t.Fatal("expected search mode")
	}
	if len(m.matches) != 2 {
		t.Fatalf("matches = %v, want the two Serilog lines", m.matches)
	}
	first := m.matches[0]
	if m.Cursor != first || !strings.Contains(m.Lines[first], "Serilog.AspNetCore") {
		t.Errorf("cursor on %q", m.Lines[m.Cursor])
	}

	m = press(m, "enter", "n")
	if m.searching || m.Cursor != m.matches[1] {
		t.Errorf("n: cursor = %d, want %d", m.Cursor, m.matches[1])
	}
	m = press(m, "n")
	if m.Cursor != first {
		t.Errorf("n should wrap to %d, got %d", first, m.Cursor)
	}
	m = press(m, "N")
	if m.Cursor != m.matches[1] {
		t.Errorf("N should wrap back to %d, got %d", m.matches[1], m.Cursor)
	}

	m = press(m, "/", "x", "backspace", "esc")
	if m.query != "" || m.matches != nil {
		t.Errorf("esc should clear the search, got %q %v", m.query, m.matches)
	}
}

func TestTreeModelQuit(t *testing.T) {
	m := NewTreeModel("App.sln", browseResult())
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
	m = press(m, "/")
	if _, cmd := m.Update(key("q")); cmd != nil {
		t.Error("q while searching should be typed, not quit")
	}
}
