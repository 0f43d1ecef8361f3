package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func event(id string, start, end time.Time) CalendarEvent {
	task := &models.Task{ID: "task-" + id, Title: id, State: models.TaskStateScheduled}
	entry := models.ScheduleEntry{ID: id, TaskID: task.ID, StartTime: start, EndTime: end}
	task.ScheduleHistory = []models.ScheduleEntry{entry}
	return CalendarEvent{Task: task, Entry: entry, StartTime: start, EndTime: end}
}

type update struct {
	taskID, entryID string
	start, end      time.Time
}

// memStore is an in-memory TaskStore with switchable failures.
type memStore struct {
	mu      sync.Mutex
	tasks   []*models.Task
	updates []update
	fail    error
	delay   time.Duration
}

func (m *memStore) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return m.tasks, nil
}

func (m *memStore) UpdateScheduleEntry(ctx context.Context, taskID, entryID string, start, end time.Time) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, t := range m.tasks {
		if t.ID != taskID {
			continue
		}
		for i := range t.ScheduleHistory {
			if t.ScheduleHistory[i].ID == entryID {
				t.ScheduleHistory[i].StartTime = start
				t.ScheduleHistory[i].EndTime = end
				m.updates = append(m.updates, update{taskID, entryID, start, end})
				return nil
			}
		}
	}
	return errors.New("entry not found")
}

func (m *memStore) entry(taskID, entryID string) models.ScheduleEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == taskID {
			e, _ := t.Entry(entryID)
			return e
		}
	}
	return models.ScheduleEntry{}
}

func newSurface(t interface{ Fatalf(string, ...any) }, store TaskStore) *Surface {
	s, err := NewSurface(store, Geometry{HourHeightPx: 60, Snap: time.Minute})
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	return s
}
