package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/ldi/dayplan/internal/calendar"
	appLog "github.com/ldi/dayplan/internal/log"
	"github.com/ldi/dayplan/pkg/models"
)

const maxOccurrencesPerEvent = 1000

// Store is the slice of the task store an import needs.
type Store interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
}

type ImportResult struct {
	Created     int      `json:"created"`
	Skipped     int      `json:"skipped"`
	Occurrences int      `json:"occurrences"`
	Truncated   []string `json:"truncated,omitempty"`
}

type parsedEvent struct {
	UID      string
	Summary  string
	Start    time.Time
	End      time.Time
	AllDay   bool
	RawRRule string
	ExDates  []time.Time
}

// TaskIDForUID maps an ICS UID onto a stable task id so that importing the
// same feed twice does not duplicate tasks.
func TaskIDForUID(uid string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("dayplan:ics:"+uid)).String()
}

// Import parses an ICS feed and creates one scheduled task per UID with one
// schedule entry per occurrence inside [from, to). Tasks that already exist
// are skipped. All-day events have no place on the time grid and are
// ignored.
func Import(ctx context.Context, store Store, r io.Reader, from, to time.Time) (ImportResult, error) {
	var result ImportResult
	if !to.After(from) {
		return result, errors.New("import window must end after it starts")
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return result, fmt.Errorf("failed to parse calendar: %w", err)
	}

	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			appLog.Error("ics vevent parse failed", err)
			continue
		}
		if ev.AllDay {
			appLog.Debug("skipping all-day event", "uid", ev.UID)
			continue
		}

		entries, truncated := expand(ev, from, to)
		if truncated {
			result.Truncated = append(result.Truncated, ev.UID)
		}
		if len(entries) == 0 {
			continue
		}

		id := TaskIDForUID(ev.UID)
		existing, err := store.GetTask(ctx, id)
		if err != nil {
			return result, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		task := &models.Task{
			ID:              id,
			Title:           ev.Summary,
			State:           models.TaskStateScheduled,
			ScheduleHistory: entries,
		}
		if task.Title == "" {
			task.Title = ev.UID
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return result, fmt.Errorf("failed to create task for %s: %w", ev.UID, err)
		}
		result.Created++
		result.Occurrences += len(entries)
	}

	appLog.Info("ics import completed",
		"created", result.Created,
		"skipped", result.Skipped,
		"occurrences", result.Occurrences,
	)
	return result, nil
}

func parseVEvent(ve *ical.VEvent) (parsedEvent, error) {
	var out parsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.UID, err)
	}
	out.Start = start
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	}
	if !out.End.After(out.Start) {
		out.End = out.Start.Add(calendar.MinDuration)
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(p.Value, "T") {
			out.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, out.Start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// expand returns one schedule entry per occurrence overlapping [from, to).
func expand(ev parsedEvent, from, to time.Time) ([]models.ScheduleEntry, bool) {
	taskID := TaskIDForUID(ev.UID)
	dur := ev.End.Sub(ev.Start)

	if ev.RawRRule == "" {
		if !(ev.Start.Before(to) && ev.End.After(from)) {
			return nil, false
		}
		return []models.ScheduleEntry{newEntry(taskID, ev.Start, ev.End)}, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Occurrences starting before from can still reach into the window.
	times := set.Between(from.Add(-dur).In(ev.Start.Location()), to.In(ev.Start.Location()), true)

	var entries []models.ScheduleEntry
	truncated := false
	for _, start := range times {
		end := start.Add(dur)
		if !(start.Before(to) && end.After(from)) {
			continue
		}
		if len(entries) == maxOccurrencesPerEvent {
			truncated = true
			appLog.Error("occurrence cap reached", errors.New("max occurrences reached"),
				"uid", ev.UID, "cap", maxOccurrencesPerEvent)
			break
		}
		entries = append(entries, newEntry(taskID, start, end))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
	return entries, truncated
}

func newEntry(taskID string, start, end time.Time) models.ScheduleEntry {
	ns := uuid.MustParse(taskID)
	return models.ScheduleEntry{
		ID:        uuid.NewSHA1(ns, []byte(start.UTC().Format(time.RFC3339))).String(),
		TaskID:    taskID,
		StartTime: start,
		EndTime:   end,
	}
}

// parseICSTime parses the basic DATE and DATE-TIME forms found in EXDATE.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
