package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

func TestScheduleEntryLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.Task{Title: "Standup"}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &models.ScheduleEntry{TaskID: task.ID, StartTime: start, EndTime: start.Add(15 * time.Minute)}
	if err := db.AddScheduleEntry(ctx, entry); err != nil {
		t.Fatalf("AddScheduleEntry failed: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Expected entry id to be assigned")
	}

	newStart := start.Add(5 * time.Hour)
	if err := db.UpdateScheduleEntry(ctx, task.ID, entry.ID, newStart, newStart.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateScheduleEntry failed: %v", err)
	}

	got, _ := db.GetTask(ctx, task.ID)
	e, ok := got.Entry(entry.ID)
	if !ok {
		t.Fatal("Expected entry to exist")
	}
	if !e.StartTime.Equal(newStart) || !e.EndTime.Equal(newStart.Add(time.Hour)) {
		t.Errorf("Expected entry moved to %v, got %v-%v", newStart, e.StartTime, e.EndTime)
	}

	if err := db.DeleteScheduleEntry(ctx, task.ID, entry.ID); err != nil {
		t.Fatalf("DeleteScheduleEntry failed: %v", err)
	}
	got, _ = db.GetTask(ctx, task.ID)
	if len(got.ScheduleHistory) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(got.ScheduleHistory))
	}
}

func TestScheduleEntryErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.Task{Title: "Task"}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	err := db.AddScheduleEntry(ctx, &models.ScheduleEntry{TaskID: task.ID, StartTime: start, EndTime: start})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}

	err = db.AddScheduleEntry(ctx, &models.ScheduleEntry{TaskID: "missing", StartTime: start, EndTime: start.Add(time.Hour)})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}

	err = db.UpdateScheduleEntry(ctx, task.ID, "missing", start, start.Add(time.Hour))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}

	err = db.UpdateScheduleEntry(ctx, task.ID, "missing", start, start.Add(-time.Hour))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}

	if err := db.DeleteScheduleEntry(ctx, task.ID, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}
}

func TestUpdateScheduleEntryChecksOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &models.Task{Title: "A", ScheduleHistory: []models.ScheduleEntry{{StartTime: start, EndTime: start.Add(time.Hour)}}}
	b := &models.Task{Title: "B"}
	for _, task := range []*models.Task{a, b} {
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
	}

	entryID := a.ScheduleHistory[0].ID
	err := db.UpdateScheduleEntry(ctx, b.ID, entryID, start, start.Add(2*time.Hour))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound for foreign entry, got %v", err)
	}
}

func TestUpdateScheduleEntryIsAtomic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		Title: "Standup",
		ScheduleHistory: []models.ScheduleEntry{
			{StartTime: start, EndTime: start.Add(time.Hour)},
		},
	}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	entryID := task.ScheduleHistory[0].ID

	// Fail the second write of the update: touching the owning task.
	_, err := db.ExecContext(ctx, `
		CREATE TRIGGER fail_task_touch BEFORE UPDATE ON tasks
		BEGIN
			SELECT RAISE(ABORT, 'store down');
		END`)
	if err != nil {
		t.Fatalf("Failed to create trigger: %v", err)
	}

	changes := 0
	db.SetOnChange(func(context.Context) { changes++ })

	newStart := start.Add(5 * time.Hour)
	if err := db.UpdateScheduleEntry(ctx, task.ID, entryID, newStart, newStart.Add(time.Hour)); err == nil {
		t.Fatal("Expected error when the task touch fails")
	}

	got, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	e, ok := got.Entry(entryID)
	if !ok {
		t.Fatal("Expected entry to exist")
	}
	if !e.StartTime.Equal(start) || !e.EndTime.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected entry to stay at %v, got %v-%v", start, e.StartTime, e.EndTime)
	}
	if changes != 0 {
		t.Errorf("Expected no change notification, got %d", changes)
	}
}

func TestDeleteTaskCascadesEntries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "A", ScheduleHistory: []models.ScheduleEntry{{StartTime: start, EndTime: start.Add(time.Hour)}}}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schedule_entries").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected entries to cascade, %d remain", count)
	}
}
