package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	menuDateStyle     = lipgloss.NewStyle().PaddingLeft(2).Bold(true)
	menuHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const logo = `
     _             _
  __| | __ _ _   _| |_ __   __ _ _ __
 / _` + "`" + ` |/ _` + "`" + ` | | | | | '_ \ / _` + "`" + ` | '_ \
| (_| | (_| | |_| | | |_) | (_| | | | |
 \__,_|\__,_|\__, |_| .__/ \__,_|_| |_|
             |___/  |_|
`

type menuChoice struct {
	name string
	hint string
}

// MenuModel is the launcher shown when dayplan runs without a command.
// The day choice opens the planner on today.
type MenuModel struct {
	today    time.Time
	choices  []menuChoice
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel(today time.Time) MenuModel {
	return MenuModel{
		today: today,
		choices: []menuChoice{
			{name: "init", hint: "create config and database"},
			{name: "day", hint: "plan " + today.Format("Mon 02 Jan")},
			{name: "web", hint: "serve the HTTP API"},
			{name: "mcp", hint: "serve MCP tools on stdio"},
			{name: "status", hint: "summarize tasks and today's plan"},
		},
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "enter":
			m.selected = m.choices[m.cursor].name
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n")
	s.WriteString(menuDateStyle.Render(m.today.Format("Monday, 02 January 2006")))
	s.WriteString("\n\n")

	for i, choice := range m.choices {
		line := fmt.Sprintf("%-8s", choice.name)
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString(menuHintStyle.Render(choice.hint))
		s.WriteString("\n")
	}

	s.WriteString("\n(use arrow keys or j/k to navigate, enter to select, q to quit)\n")

	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu(today time.Time) (string, error) {
	m := NewMenuModel(today)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
