package calendar

import (
	"sort"
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

type PositionedEvent struct {
	CalendarEvent
	Title    string   `json:"title"`
	Position Position `json:"position"`
}

type DeadlineView struct {
	Deadline
	TaskID  string     `json:"task_id"`
	Title   string     `json:"title"`
	Urgency Urgency    `json:"urgency"`
	Color   ColorToken `json:"color"`
}

// DayView is everything a surface needs to draw one day.
type DayView struct {
	Date      time.Time         `json:"date"`
	Events    []PositionedEvent `json:"events"`
	Deadlines []DeadlineView    `json:"deadlines"`
}

// BuildDay selects, lays out and positions one day of tasks. Events come
// back ordered by start then column; deadlines by due time.
func BuildDay(tasks []*models.Task, date time.Time, g Geometry, now time.Time) DayView {
	view := DayView{Date: date}

	for _, ev := range Layout(SelectSchedulesForDate(tasks, date)) {
		pe := PositionedEvent{
			CalendarEvent: ev,
			Position:      PositionOf(ev, date, g.HourHeightPx),
		}
		if ev.Task != nil {
			pe.Title = ev.Task.Title
		}
		view.Events = append(view.Events, pe)
	}
	sort.SliceStable(view.Events, func(i, j int) bool {
		a, b := view.Events[i], view.Events[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.Column < b.Column
	})

	for _, d := range SelectDeadlinesForDate(tasks, date) {
		u := Classify(d.DueDateTime, now)
		view.Deadlines = append(view.Deadlines, DeadlineView{
			Deadline: d,
			TaskID:   d.Task.ID,
			Title:    d.Task.Title,
			Urgency:  u,
			Color:    u.Color(),
		})
	}
	sort.SliceStable(view.Deadlines, func(i, j int) bool {
		return view.Deadlines[i].DueDateTime.Before(view.Deadlines[j].DueDateTime)
	})

	return view
}

// FindEvent locates the laid out event for an entry id.
func (v DayView) FindEvent(entryID string) (PositionedEvent, bool) {
	for _, ev := range v.Events {
		if ev.Entry.ID == entryID {
			return ev, true
		}
	}
	return PositionedEvent{}, false
}
