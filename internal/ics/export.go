package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/pkg/models"
)

const productID = "-//dayplan//day planner//EN"

// PropertyTaskID carries the owning task id on exported events.
const PropertyTaskID ical.ComponentProperty = "X-DAYPLAN-TASK-ID"

// ExportDay serializes the events of one laid out day.
func ExportDay(view calendar.DayView) string {
	cal := newCalendar()
	now := time.Now()
	for _, ev := range view.Events {
		addEvent(cal, ev.Task, ev.Entry, now)
	}
	return cal.Serialize()
}

// ExportRange serializes every schedule entry overlapping [from, to).
// Removed tasks are left out.
func ExportRange(tasks []*models.Task, from, to time.Time) string {
	cal := newCalendar()
	now := time.Now()
	for _, t := range tasks {
		if t == nil || t.State == models.TaskStateRemoved {
			continue
		}
		for _, e := range t.ScheduleHistory {
			if e.StartTime.Before(to) && e.EndTime.After(from) {
				addEvent(cal, t, e, now)
			}
		}
	}
	return cal.Serialize()
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	return cal
}

func addEvent(cal *ical.Calendar, t *models.Task, e models.ScheduleEntry, stamp time.Time) {
	ev := cal.AddEvent(e.ID)
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(e.StartTime)
	ev.SetEndAt(e.EndTime)
	if t == nil {
		return
	}
	ev.SetSummary(t.Title)
	ev.SetProperty(PropertyTaskID, t.ID)
	if t.State == models.TaskStateFinished {
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}
}
