package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/threadline/pkg/feed"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// ThreadModel is the bubbletea model for the interactive thread browser.
// Entries come pre-threaded; the model only decides which of them are
// visible after folding.
type ThreadModel struct {
	Title   string
	Entries []feed.Entry
	Cursor  int
	Height  int
	Offset  int

	collapsed map[string]bool
	visible   []int // indexes into Entries after folding
}

// NewThreadModel creates a browser over threaded entries.
func NewThreadModel(title string, entries []feed.Entry) ThreadModel {
	m := ThreadModel{
		Title:     title,
		Entries:   entries,
		Height:    20,
		collapsed: make(map[string]bool),
	}
	m.visible = visibleIndexes(entries, m.collapsed)
	return m
}

func (m ThreadModel) Init() tea.Cmd {
	return nil
}

func (m ThreadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g":
			m.Cursor = 0
			m.Offset = 0
		case "G":
			if len(m.visible) > 0 {
				m.Cursor = len(m.visible) - 1
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "enter":
			m = m.toggle()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 5
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// toggle folds or unfolds the replies under the cursor.
func (m ThreadModel) toggle() ThreadModel {
	if len(m.visible) == 0 {
		return m
	}
	idx := m.visible[m.Cursor]
	if !hasReplies(m.Entries, idx) {
		return m
	}

	id := m.Entries[idx].Item.ID
	m.collapsed[id] = !m.collapsed[id]
	m.visible = visibleIndexes(m.Entries, m.collapsed)

	if m.Cursor >= len(m.visible) {
		m.Cursor = len(m.visible) - 1
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
	return m
}

func (m ThreadModel) View() string {
	var b strings.Builder

	title := m.Title
	if title == "" {
		title = appName
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d records", len(m.Entries))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("j/k navigate  space fold  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for i := m.Offset; i < end; i++ {
		idx := m.visible[i]
		e := m.Entries[idx]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		head := e.Item.Author
		if head == "" {
			head = e.Item.ID
		}
		line := cursor + strings.Repeat("  ", e.Depth-1) + head + ": " + firstLine(e.Item.Body)

		styled := listNormalStyle.Render(line)
		if i == m.Cursor {
			styled = listSelectedStyle.Render(line)
		}
		if m.collapsed[e.Item.ID] {
			styled += " " + listDimStyle.Render(fmt.Sprintf("(+%d hidden)", descendantCount(m.Entries, idx)))
		}

		b.WriteString(styled)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.visible) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.visible))))
	} else {
		b.WriteString(listDimStyle.Render("  (empty feed)"))
	}

	return b.String()
}

// visibleIndexes returns the entry indexes still shown given the set of
// folded record ids. Descendants of a folded record are hidden; the
// folded record itself stays visible. Entries are in pre-order, so one
// depth watermark is enough to track the nearest folded ancestor.
func visibleIndexes(entries []feed.Entry, collapsed map[string]bool) []int {
	visible := make([]int, 0, len(entries))
	hideBelow := 0 // depth of the nearest folded ancestor, 0 = none
	for i, e := range entries {
		if hideBelow > 0 && e.Depth > hideBelow {
			continue
		}
		hideBelow = 0
		if collapsed[e.Item.ID] {
			hideBelow = e.Depth
		}
		visible = append(visible, i)
	}
	return visible
}

// hasReplies reports whether the entry at i has at least one reply.
func hasReplies(entries []feed.Entry, i int) bool {
	return i+1 < len(entries) && entries[i+1].Depth > entries[i].Depth
}

// descendantCount counts the entries nested under the entry at i.
func descendantCount(entries []feed.Entry, i int) int {
	n := 0
	for j := i + 1; j < len(entries) && entries[j].Depth > entries[i].Depth; j++ {
		n++
	}
	return n
}

// firstLine returns the body up to the first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
