package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// GridViewport shows a tall rendered day grid through a scrollable window.
type GridViewport struct {
	viewport viewport.Model
	ready    bool
}

func NewGridViewport(width, height int) *GridViewport {
	g := &GridViewport{}
	g.SetSize(width, height)
	return g
}

func (g *GridViewport) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !g.ready {
		g.viewport = viewport.New(vpWidth, height)
		g.ready = true
	} else {
		g.viewport.Width = vpWidth
		g.viewport.Height = height
	}
}

// SetContent replaces the grid and keeps the current scroll offset.
func (g *GridViewport) SetContent(content string) {
	offset := g.viewport.YOffset
	g.viewport.SetContent(content)
	g.viewport.SetYOffset(offset)
}

// Reveal scrolls the minimum amount needed to bring line into view.
func (g *GridViewport) Reveal(line int) {
	top := g.viewport.YOffset
	bottom := top + g.viewport.Height - 1
	switch {
	case line < top:
		g.viewport.SetYOffset(line)
	case line > bottom:
		g.viewport.SetYOffset(line - g.viewport.Height + 1)
	}
}

func (g *GridViewport) ScrollTo(line int) {
	g.viewport.SetYOffset(line)
}

func (g *GridViewport) YOffset() int {
	return g.viewport.YOffset
}

func (g *GridViewport) Height() int {
	return g.viewport.Height
}

func (g *GridViewport) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	g.viewport, cmd = g.viewport.Update(msg)
	return cmd
}

func (g *GridViewport) View() string {
	if !g.ready {
		return ""
	}

	if g.viewport.TotalLineCount() <= g.viewport.Height {
		return g.viewport.View()
	}

	h := g.viewport.Height
	handlePos := int(float64(h-1) * g.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, g.viewport.View(), sb.String())
}
