package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/internal/ui/components"
)

const (
	deadlinesWidth = 34
	defaultWidth   = 100
	defaultHeight  = 30
	// chromeHeight covers the header and the status line.
	chromeHeight = 3
	// firstVisibleHour is where the grid opens when the day has no events.
	firstVisibleHour = 8
)

var (
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	modeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type mode int

const (
	modeBrowse mode = iota
	modeMove
	modeResize
	modeCommitting
)

func (m mode) String() string {
	switch m {
	case modeMove:
		return "MOVE"
	case modeResize:
		return "RESIZE"
	case modeCommitting:
		return "SAVING"
	default:
		return ""
	}
}

type dayLoadedMsg struct {
	view calendar.DayView
	err  error
}

type commitDoneMsg struct {
	r   calendar.TimeRange
	err error
}

// DayModel is the interactive single-day calendar. Moves and resizes go
// through the surface's gesture sessions; commits run as commands.
type DayModel struct {
	ctx     context.Context
	surface *calendar.Surface
	day     time.Time
	now     func() time.Time

	view       calendar.DayView
	loaded     bool
	selectedID string

	mode     mode
	drag     *calendar.DragSession
	resize   *calendar.ResizeSession
	pointerY float64
	preview  *ghost

	notice string
	width  int
	height int

	grid      *components.GridViewport
	deadlines *components.DeadlineList
	quitting  bool
}

func NewDayModel(ctx context.Context, surface *calendar.Surface, day time.Time, now func() time.Time) DayModel {
	if now == nil {
		now = time.Now
	}
	start, _ := calendar.DayBounds(day)
	m := DayModel{
		ctx:       ctx,
		surface:   surface,
		day:       start,
		now:       now,
		width:     defaultWidth,
		height:    defaultHeight,
		deadlines: components.NewDeadlineList(deadlinesWidth),
	}
	m.grid = components.NewGridViewport(m.gridWidth(), m.height-chromeHeight)
	return m
}

func (m DayModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DayModel) loadCmd() tea.Cmd {
	ctx, surface, day, now := m.ctx, m.surface, m.day, m.now
	return func() tea.Msg {
		view, err := surface.Day(ctx, day, now())
		return dayLoadedMsg{view: view, err: err}
	}
}

func (m DayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetSize(m.gridWidth(), m.height-chromeHeight)
		m.refreshGrid()
		return m, nil

	case dayLoadedMsg:
		if !msg.view.Date.IsZero() && !msg.view.Date.Equal(m.day) {
			return m, nil // stale load for a day we already left
		}
		if msg.err != nil {
			m.notice = fmt.Sprintf("Could not load the day: %v", msg.err)
			return m, nil
		}
		first := !m.loaded
		m.view = msg.view
		m.loaded = true
		m.deadlines.SetItems(m.view.Deadlines)
		if _, ok := m.view.FindEvent(m.selectedID); !ok {
			m.selectedID = ""
			if len(m.view.Events) > 0 {
				m.selectedID = m.view.Events[0].Entry.ID
			}
		}
		m.refreshGrid()
		if first {
			m.scrollToStart()
		}
		return m, nil

	case commitDoneMsg:
		m.mode = modeBrowse
		m.drag, m.resize, m.preview = nil, nil, nil
		if msg.err != nil {
			m.notice = calendar.FailureNotice(msg.err)
		} else {
			loc := m.day.Location()
			m.notice = fmt.Sprintf("Saved %s-%s", msg.r.Start.In(loc).Format("15:04"), msg.r.End.In(loc).Format("15:04"))
		}
		// Reload either way: on failure the event snaps back to the stored time.
		return m, m.loadCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m DayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		if m.mode != modeCommitting {
			m.cancelGesture()
		}
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeCommitting:
		return m, nil

	case modeMove, modeResize:
		switch key {
		case "j", "down":
			m.adjust(m.step())
		case "k", "up":
			m.adjust(-m.step())
		case "enter":
			return m.commit()
		case "esc":
			m.cancelGesture()
			m.notice = "Cancelled"
			m.refreshGrid()
		}
		return m, nil
	}

	switch key {
	case "tab":
		m.selectNext()
		m.refreshGrid()
	case "m":
		m.beginMove()
	case "e":
		m.beginResize(calendar.EdgeBottom)
	case "E":
		m.beginResize(calendar.EdgeTop)
	case "h", "left":
		m.day = m.day.AddDate(0, 0, -1)
		m.notice = ""
		return m, m.loadCmd()
	case "l", "right":
		m.day = m.day.AddDate(0, 0, 1)
		m.notice = ""
		return m, m.loadCmd()
	case "r":
		return m, m.loadCmd()
	default:
		return m, m.grid.Update(msg)
	}
	return m, nil
}

// step is one quarter hour in pixels.
func (m DayModel) step() float64 {
	return m.surface.Geometry().HourHeightPx / 4
}

func (m *DayModel) selected() (calendar.PositionedEvent, bool) {
	return m.view.FindEvent(m.selectedID)
}

func (m *DayModel) selectNext() {
	if len(m.view.Events) == 0 {
		return
	}
	next := 0
	for i, ev := range m.view.Events {
		if ev.Entry.ID == m.selectedID {
			next = (i + 1) % len(m.view.Events)
			break
		}
	}
	m.selectedID = m.view.Events[next].Entry.ID
	ev := m.view.Events[next]
	m.grid.Reveal(rowFor(ev.Position.Top, m.surface.Geometry().HourHeightPx))
}

func (m *DayModel) beginMove() {
	ev, ok := m.selected()
	if !ok {
		m.notice = "No event selected"
		return
	}
	drag, err := m.surface.BeginDrag(ev.CalendarEvent, m.day)
	if err != nil {
		m.notice = calendar.FailureNotice(err)
		return
	}
	m.drag = drag
	m.mode = modeMove
	m.pointerY = ev.Position.Top
	m.notice = ""
	m.updatePreview()
}

func (m *DayModel) beginResize(edge calendar.Edge) {
	ev, ok := m.selected()
	if !ok {
		m.notice = "No event selected"
		return
	}
	anchor := ev.Position.Top
	if edge == calendar.EdgeBottom {
		anchor += ev.Position.Height
	}
	rs, err := m.surface.BeginResize(ev.CalendarEvent, edge, anchor, m.day)
	if err != nil {
		m.notice = calendar.FailureNotice(err)
		return
	}
	m.resize = rs
	m.mode = modeResize
	m.pointerY = anchor
	m.notice = ""
	m.updatePreview()
}

func (m *DayModel) adjust(delta float64) {
	m.pointerY += delta
	m.updatePreview()
}

func (m *DayModel) updatePreview() {
	ev, _ := m.selected()
	g := &ghost{Column: ev.Column, TotalColumns: ev.TotalColumns}

	switch m.mode {
	case modeMove:
		g.Range = m.drag.Preview(m.pointerY)
		g.Position = calendar.PositionOf(calendar.CalendarEvent{StartTime: g.Range.Start, EndTime: g.Range.End}, m.day, m.surface.Geometry().HourHeightPx)
	case modeResize:
		p, err := m.resize.Move(m.pointerY)
		if err != nil {
			m.notice = err.Error()
			return
		}
		g.Range = p.Range
		g.Position = p.Position
	default:
		return
	}

	m.preview = g
	m.refreshGrid()
	m.grid.Reveal(rowFor(g.Position.Top, m.surface.Geometry().HourHeightPx))
}

func (m DayModel) commit() (tea.Model, tea.Cmd) {
	ctx, y := m.ctx, m.pointerY
	var cmd tea.Cmd
	switch m.mode {
	case modeMove:
		drag := m.drag
		cmd = func() tea.Msg {
			r, err := drag.Drop(ctx, y)
			return commitDoneMsg{r: r, err: err}
		}
	case modeResize:
		rs := m.resize
		cmd = func() tea.Msg {
			r, err := rs.Release(ctx, y)
			return commitDoneMsg{r: r, err: err}
		}
	default:
		return m, nil
	}
	m.mode = modeCommitting
	return m, cmd
}

func (m *DayModel) cancelGesture() {
	if m.drag != nil {
		m.drag.Cancel()
	}
	if m.resize != nil {
		m.resize.Cancel()
	}
	m.drag, m.resize, m.preview = nil, nil, nil
	m.mode = modeBrowse
}

func (m DayModel) gridWidth() int {
	w := m.width - deadlinesWidth - 1
	if w < labelWidth+10 {
		w = labelWidth + 10
	}
	return w
}

func (m *DayModel) refreshGrid() {
	if !m.loaded {
		return
	}
	m.grid.SetContent(renderGrid(m.view, m.surface.Geometry().HourHeightPx, m.gridWidth()-1, m.selectedID, m.preview))
}

func (m *DayModel) scrollToStart() {
	hh := m.surface.Geometry().HourHeightPx
	line := firstVisibleHour * rowsPerHour
	if ev, ok := m.selected(); ok {
		line = rowFor(ev.Position.Top, hh)
	}
	m.grid.ScrollTo(line)
}

func (m DayModel) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render(m.day.Format("Monday, 02 Jan 2006"))
	if s := m.mode.String(); s != "" {
		header += "  " + modeStyle.Render(s)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.grid.View(), " ", m.deadlines.View())

	var help string
	switch m.mode {
	case modeMove, modeResize:
		help = "j/k adjust  enter save  esc cancel"
	default:
		help = "tab select  m move  e/E resize end/start  h/l day  r reload  q quit"
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	if m.notice != "" {
		sb.WriteString(noticeStyle.Render(m.notice))
		sb.WriteString("  ")
	}
	sb.WriteString(helpStyle.Render(help))
	return sb.String()
}

// RunDay opens the interactive day view.
func RunDay(ctx context.Context, surface *calendar.Surface, day time.Time) error {
	p := tea.NewProgram(NewDayModel(ctx, surface, day, nil), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
