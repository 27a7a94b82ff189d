package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/render/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listMatchStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TreeModel - Interactive dependency tree browser
// =============================================================================

// TreeModel is the bubbletea model for scrolling through a distilled tree
// and searching it incrementally.
type TreeModel struct {
	Title  string
	Lines  []string
	Cursor int
	Offset int
	Height int

	query     string
	searching bool
	matches   []int
}

// NewTreeModel creates a browser over the plain text tree of r.
func NewTreeModel(title string, r *analyzer.Result) TreeModel {
	text := strings.TrimRight(tree.String(r, tree.Options{}), "\n")
	return TreeModel{
		Title:  title,
		Lines:  strings.Split(text, "\n"),
		Height: 20,
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "pgup", "ctrl+u":
			m.moveTo(m.Cursor - m.Height)
		case "pgdown", "ctrl+d":
			m.moveTo(m.Cursor + m.Height)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(len(m.Lines) - 1)
		case "/":
			m.searching = true
			m.query = ""
			m.matches = nil
		case "n":
			m.jump(1)
		case "N":
			m.jump(-1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.moveTo(m.Cursor)
	}
	return m, nil
}

func (m TreeModel) updateSearch(msg tea.KeyMsg) TreeModel {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.matches = nil
		return m
	case tea.KeyEnter:
		m.searching = false
		return m
	case tea.KeyBackspace:
		if m.query != "" {
			m.query = m.query[:len(m.query)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	default:
		return m
	}
	m.search()
	return m
}

// search recomputes the matching lines and moves to the first match at or
// below the cursor.
func (m *TreeModel) search() {
	m.matches = nil
	if m.query == "" {
		return
	}
	q := strings.ToLower(m.query)
	for i, line := range m.Lines {
		if strings.Contains(strings.ToLower(line), q) {
			m.matches = append(m.matches, i)
		}
	}
	for _, i := range m.matches {
		if i >= m.Cursor {
			m.moveTo(i)
			return
		}
	}
	if len(m.matches) > 0 {
		m.moveTo(m.matches[0])
	}
}

// jump moves to the next (dir > 0) or previous match, wrapping around.
func (m *TreeModel) jump(dir int) {
	if len(m.matches) == 0 {
		return
	}
	if dir > 0 {
		for _, i := range m.matches {
			if i > m.Cursor {
				m.moveTo(i)
				return
			}
		}
		m.moveTo(m.matches[0])
		return
	}
	for j := len(m.matches) - 1; j >= 0; j-- {
		if m.matches[j] < m.Cursor {
			m.moveTo(m.matches[j])
			return
		}
	}
	m.moveTo(m.matches[len(m.matches)-1])
}

func (m *TreeModel) moveTo(i int) {
	m.Cursor = max(0, min(i, len(m.Lines)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TreeModel) isMatch(i int) bool {
	for _, j := range m.matches {
		if j == i {
			return true
		}
	}
	return false
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  / search  n/N next/prev  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Lines))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + m.Lines[i]
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.isMatch(i):
			b.WriteString(listMatchStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Lines))
	if m.query != "" {
		status += fmt.Sprintf("  %d matches", len(m.matches))
	}
	b.WriteString(listDimStyle.Render(status))
	if m.searching {
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render("/" + m.query))
	}

	return b.String()
}
