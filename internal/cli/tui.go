package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kintree/pkg/person"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PersonListModel - Interactive search result selection
// =============================================================================

// PersonListModel is the bubbletea model for picking one search result.
type PersonListModel struct {
	People   []person.Person
	Cursor   int
	Offset   int
	Height   int
	Selected *person.Person
}

// NewPersonListModel creates a picker over people.
func NewPersonListModel(people []person.Person) PersonListModel {
	return PersonListModel{People: people, Height: 10}
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = min(m.Offset, m.Cursor)
			}
		case "down", "j":
			if m.Cursor < len(m.People)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.People) == 0 {
				return m, tea.Quit
			}
			p := m.People[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	return m, nil
}

func (m PersonListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Add to chart"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.People))
	for i := m.Offset; i < end; i++ {
		p := m.People[i]
		line := fmt.Sprintf("%-24s %s", p.DisplayName(), listDimStyle.Render(describe(p)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + genderStyle(p.Data.Gender).Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.People) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.People))))
	}
	return b.String()
}

// describe summarizes the fields that tell namesakes apart.
func describe(p person.Person) string {
	var parts []string
	for _, s := range []string{p.Data.Birthday, p.Data.Location, p.Data.NativePlace} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, "#"+p.ID)
	return strings.Join(parts, " · ")
}

// pickPerson runs the picker and returns the chosen person, if any.
func pickPerson(people []person.Person) (*person.Person, error) {
	final, err := tea.NewProgram(NewPersonListModel(people)).Run()
	if err != nil {
		return nil, err
	}
	return final.(PersonListModel).Selected, nil
}
