package calendar

import (
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

// CalendarEvent is one schedule entry placed on a day. It is rebuilt on
// every layout pass and never persisted.
type CalendarEvent struct {
	Task         *models.Task         `json:"-"`
	Entry        models.ScheduleEntry `json:"entry"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
	Column       int                  `json:"column"`
	TotalColumns int                  `json:"total_columns"`
}

func (ev CalendarEvent) Range() TimeRange {
	return TimeRange{Start: ev.StartTime, End: ev.EndTime}
}

type Deadline struct {
	Task        *models.Task `json:"-"`
	DueDateTime time.Time    `json:"due_date_time"`
}

// SelectSchedulesForDate returns the schedule entries touching date, in
// date's location. An entry counts when it starts on the day, ends inside
// it, or spans it entirely. Entries ending exactly at midnight belong to
// the previous day only. Inverted entries (end at or before start) are
// keyed on their start day alone; where their end falls is ignored.
func SelectSchedulesForDate(tasks []*models.Task, date time.Time) []CalendarEvent {
	dayStart, dayEnd := DayBounds(date)

	var events []CalendarEvent
	for _, t := range tasks {
		if t == nil || t.State == models.TaskStateRemoved {
			continue
		}
		for _, e := range t.ScheduleHistory {
			startsOnDay := !e.StartTime.Before(dayStart) && e.StartTime.Before(dayEnd)
			overlaps := e.StartTime.Before(dayEnd) && e.EndTime.After(dayStart)
			if !startsOnDay && !overlaps {
				continue
			}
			events = append(events, CalendarEvent{
				Task:         t,
				Entry:        e,
				StartTime:    e.StartTime,
				EndTime:      e.EndTime,
				TotalColumns: 1,
			})
		}
	}
	return events
}

// SelectDeadlinesForDate returns tasks due on date's calendar day.
func SelectDeadlinesForDate(tasks []*models.Task, date time.Time) []Deadline {
	loc := date.Location()
	y, m, d := date.Date()

	var deadlines []Deadline
	for _, t := range tasks {
		if t == nil || t.DueDateTime == nil || t.State == models.TaskStateRemoved {
			continue
		}
		dy, dm, dd := t.DueDateTime.In(loc).Date()
		if dy == y && dm == m && dd == d {
			deadlines = append(deadlines, Deadline{Task: t, DueDateTime: *t.DueDateTime})
		}
	}
	return deadlines
}
