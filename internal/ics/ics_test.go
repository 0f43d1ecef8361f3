package ics

import (
	"context"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/pkg/models"
)

type memStore struct {
	tasks map[string]*models.Task
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[string]*models.Task)}
}

func (m *memStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	return m.tasks[id], nil
}

func (m *memStore) CreateTask(_ context.Context, t *models.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func utc(day, h, min int) time.Time {
	return time.Date(2025, 3, day, h, min, 0, 0, time.UTC)
}

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:standup@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250310T090000Z
DTEND:20250310T091500Z
SUMMARY:Standup
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20250312T090000Z
END:VEVENT
BEGIN:VEVENT
UID:review@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250311T140000Z
DTEND:20250311T153000Z
SUMMARY:Design review
END:VEVENT
BEGIN:VEVENT
UID:holiday@example.com
DTSTAMP:20250301T000000Z
DTSTART;VALUE=DATE:20250313
DTEND;VALUE=DATE:20250314
SUMMARY:Holiday
END:VEVENT
BEGIN:VEVENT
UID:old@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250201T100000Z
DTEND:20250201T110000Z
SUMMARY:Outside window
END:VEVENT
END:VCALENDAR
`

func TestImport(t *testing.T) {
	store := newMemStore()
	res, err := Import(context.Background(), store, strings.NewReader(feed), utc(10, 0, 0), utc(17, 0, 0))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if res.Created != 2 {
		t.Errorf("Expected 2 tasks created, got %d", res.Created)
	}
	if res.Occurrences != 5 {
		t.Errorf("Expected 5 occurrences (4 standups + review), got %d", res.Occurrences)
	}

	standup := store.tasks[TaskIDForUID("standup@example.com")]
	if standup == nil {
		t.Fatal("Expected standup task")
	}
	if standup.Title != "Standup" || standup.State != models.TaskStateScheduled {
		t.Errorf("Unexpected standup task: %+v", standup)
	}
	if len(standup.ScheduleHistory) != 4 {
		t.Fatalf("Expected 4 standup entries, got %d", len(standup.ScheduleHistory))
	}
	for _, e := range standup.ScheduleHistory {
		if e.StartTime.Day() == 12 {
			t.Errorf("Expected EXDATE occurrence to be excluded, got %v", e.StartTime)
		}
		if e.Duration() != 15*time.Minute {
			t.Errorf("Expected 15m occurrences, got %v", e.Duration())
		}
	}

	if _, ok := store.tasks[TaskIDForUID("holiday@example.com")]; ok {
		t.Error("Expected all-day event to be skipped")
	}
	if _, ok := store.tasks[TaskIDForUID("old@example.com")]; ok {
		t.Error("Expected event outside the window to be skipped")
	}
}

func TestImportIsIdempotent(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	if _, err := Import(ctx, store, strings.NewReader(feed), utc(10, 0, 0), utc(17, 0, 0)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	res, err := Import(ctx, store, strings.NewReader(feed), utc(10, 0, 0), utc(17, 0, 0))
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if res.Created != 0 || res.Skipped != 2 {
		t.Errorf("Expected second import to skip both tasks, got %+v", res)
	}
}

func TestImportRejectsEmptyWindow(t *testing.T) {
	if _, err := Import(context.Background(), newMemStore(), strings.NewReader(feed), utc(10, 0, 0), utc(10, 0, 0)); err == nil {
		t.Error("Expected error for empty window")
	}
}

func TestExportRange(t *testing.T) {
	tasks := []*models.Task{
		{
			ID:    "t1",
			Title: "Write report",
			State: models.TaskStateDoing,
			ScheduleHistory: []models.ScheduleEntry{
				{ID: "e1", TaskID: "t1", StartTime: utc(10, 9, 0), EndTime: utc(10, 10, 0)},
				{ID: "e2", TaskID: "t1", StartTime: utc(20, 9, 0), EndTime: utc(20, 10, 0)},
			},
		},
		{
			ID:    "t2",
			Title: "Gone",
			State: models.TaskStateRemoved,
			ScheduleHistory: []models.ScheduleEntry{
				{ID: "e3", TaskID: "t2", StartTime: utc(10, 11, 0), EndTime: utc(10, 12, 0)},
			},
		},
	}

	out := ExportRange(tasks, utc(10, 0, 0), utc(11, 0, 0))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Exported calendar does not parse: %v\n%s", err, out)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if uid := ev.GetProperty(ical.ComponentPropertyUniqueId); uid == nil || uid.Value != "e1" {
		t.Errorf("Expected UID e1, got %v", uid)
	}
	if p := ev.GetProperty(PropertyTaskID); p == nil || p.Value != "t1" {
		t.Errorf("Expected task id property t1, got %v", p)
	}
	start, err := ev.GetStartAt()
	if err != nil || !start.Equal(utc(10, 9, 0)) {
		t.Errorf("Expected start 09:00, got %v (err %v)", start, err)
	}
}

func TestExportDay(t *testing.T) {
	task := &models.Task{
		ID:    "t1",
		Title: "Focus",
		ScheduleHistory: []models.ScheduleEntry{
			{ID: "e1", TaskID: "t1", StartTime: utc(10, 9, 0), EndTime: utc(10, 10, 0)},
			{ID: "e2", TaskID: "t1", StartTime: utc(10, 9, 30), EndTime: utc(10, 11, 0)},
		},
	}
	view := calendar.BuildDay([]*models.Task{task}, utc(10, 0, 0), calendar.DefaultGeometry(), utc(10, 8, 0))

	out := ExportDay(view)
	if !strings.Contains(out, "SUMMARY:Focus") {
		t.Errorf("Expected summary in export:\n%s", out)
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("Expected 2 events, got %d", n)
	}
}
