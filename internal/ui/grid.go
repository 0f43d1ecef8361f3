package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ldi/dayplan/internal/calendar"
)

const (
	rowsPerHour = 2
	labelWidth  = 6
)

// ghost is the live preview of an event being moved or resized.
type ghost struct {
	Position     calendar.Position
	Range        calendar.TimeRange
	Column       int
	TotalColumns int
}

func rowHeightPx(hourHeightPx float64) float64 {
	return hourHeightPx / rowsPerHour
}

// rowFor maps a pixel offset on the day grid to a terminal row.
func rowFor(px, hourHeightPx float64) int {
	return int(px / rowHeightPx(hourHeightPx))
}

func gridRows(day time.Time) int {
	start, end := calendar.DayBounds(day)
	return int(math.Ceil(end.Sub(start).Hours() * rowsPerHour))
}

// renderGrid draws the day as text: an hour label gutter and one lane per
// layout column, events side by side the way Layout assigned them.
func renderGrid(view calendar.DayView, hourHeightPx float64, width int, selectedID string, preview *ghost) string {
	rows := gridRows(view.Date)
	laneWidth := width - labelWidth
	if laneWidth < 4 {
		laneWidth = 4
	}

	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", laneWidth))
	}

	for _, ev := range view.Events {
		border := '│'
		if ev.Entry.ID == selectedID {
			border = '┃'
		}
		label := fmt.Sprintf("%s %s", ev.StartTime.In(view.Date.Location()).Format("15:04"), ev.Title)
		drawBox(cells, ev.Position, hourHeightPx, ev.Column, ev.TotalColumns, border, label)
	}

	if preview != nil {
		loc := view.Date.Location()
		label := fmt.Sprintf("→ %s-%s", preview.Range.Start.In(loc).Format("15:04"), preview.Range.End.In(loc).Format("15:04"))
		drawBox(cells, preview.Position, hourHeightPx, preview.Column, preview.TotalColumns, '░', label)
	}

	dayStart, _ := calendar.DayBounds(view.Date)
	var sb strings.Builder
	for r, row := range cells {
		gutter := strings.Repeat(" ", labelWidth)
		if r%rowsPerHour == 0 {
			at := dayStart.Add(time.Duration(r/rowsPerHour) * time.Hour)
			gutter = fmt.Sprintf("%-*s", labelWidth, at.Format("15:04"))
		}
		sb.WriteString(gutterStyle.Render(gutter))
		sb.WriteString(strings.TrimRight(string(row), " "))
		if r < len(cells)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func drawBox(cells [][]rune, pos calendar.Position, hourHeightPx float64, column, totalColumns int, border rune, label string) {
	if len(cells) == 0 {
		return
	}
	if totalColumns < 1 {
		totalColumns = 1
	}
	laneWidth := len(cells[0])
	colWidth := laneWidth / totalColumns
	if colWidth < 2 {
		colWidth = 2
	}
	x0 := column * colWidth
	if x0 >= laneWidth {
		return
	}
	x1 := x0 + colWidth - 1 // last column is a gap
	if x1 > laneWidth {
		x1 = laneWidth
	}

	r0 := rowFor(pos.Top, hourHeightPx)
	r1 := int(math.Ceil((pos.Top+pos.Height)/rowHeightPx(hourHeightPx))) - 1
	if r0 >= len(cells) {
		r0 = len(cells) - 1
	}
	if r1 < r0 {
		r1 = r0
	}
	if r1 >= len(cells) {
		r1 = len(cells) - 1
	}

	text := []rune(label)
	for r := r0; r <= r1; r++ {
		cells[r][x0] = border
		for x := x0 + 1; x < x1; x++ {
			cells[r][x] = ' '
		}
		if r == r0 {
			for i, ch := range text {
				if x0+1+i >= x1 {
					break
				}
				cells[r][x0+1+i] = ch
			}
		}
	}
}
