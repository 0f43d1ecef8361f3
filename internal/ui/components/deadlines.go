package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/dayplan/internal/calendar"
)

var (
	deadlineHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Padding(0, 1)

	subTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// UrgencyColors maps the engine's color tokens onto terminal colors.
var UrgencyColors = map[calendar.ColorToken]lipgloss.Color{
	calendar.ColorRed:    lipgloss.Color("196"),
	calendar.ColorOrange: lipgloss.Color("208"),
	calendar.ColorBlue:   lipgloss.Color("33"),
}

func urgencyStyle(c calendar.ColorToken) lipgloss.Style {
	color, ok := UrgencyColors[c]
	if !ok {
		color = lipgloss.Color("252")
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Padding(0, 1)
}

// DeadlineList renders a day's deadlines grouped by urgency, most urgent
// first.
type DeadlineList struct {
	Items []calendar.DeadlineView
	Width int
	Title string
}

func NewDeadlineList(width int) *DeadlineList {
	return &DeadlineList{
		Width: width,
		Title: "Deadlines",
	}
}

func (d *DeadlineList) SetItems(items []calendar.DeadlineView) {
	d.Items = items
}

func (d *DeadlineList) View() string {
	var boxes []string
	for _, u := range []calendar.Urgency{calendar.UrgencyHigh, calendar.UrgencyMedium, calendar.UrgencyLow} {
		var group []calendar.DeadlineView
		for _, item := range d.Items {
			if item.Urgency == u {
				group = append(group, item)
			}
		}
		if len(group) > 0 {
			boxes = append(boxes, d.renderBox(u, group))
		}
	}

	var content string
	if len(boxes) == 0 {
		content = placeholderStyle.Render("Nothing due")
	} else {
		content = strings.Join(boxes, "\n")
	}

	if d.Title != "" {
		return deadlineHeaderStyle.Render(d.Title) + "\n" + content
	}
	return content
}

func (d *DeadlineList) renderBox(u calendar.Urgency, items []calendar.DeadlineView) string {
	style := urgencyStyle(u.Color())
	subTitle := subTitleStyle.Foreground(style.GetForeground()).Render(strings.ToUpper(string(u)))

	innerWidth := d.Width - 4
	if innerWidth < 0 {
		innerWidth = 0
	}
	nameWidth := innerWidth - 6
	if nameWidth < 0 {
		nameWidth = 0
	}

	var lines []string
	for _, item := range items {
		wrapped := lipgloss.NewStyle().Width(nameWidth).Render(item.Title)
		for i, line := range strings.Split(wrapped, "\n") {
			if i == 0 {
				lines = append(lines, fmt.Sprintf("%s %s", item.DueDateTime.Format("15:04"), line))
			} else {
				lines = append(lines, fmt.Sprintf("      %s", line))
			}
		}
	}

	return style.Width(d.Width).Render(subTitle + "\n" + strings.Join(lines, "\n"))
}
