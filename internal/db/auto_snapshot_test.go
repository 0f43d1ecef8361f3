package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

func TestAutoSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	snapshotPath := filepath.Join(t.TempDir(), "auto-snapshot.jsonl")
	db.EnableAutoSnapshot(snapshotPath)

	task := &models.Task{Title: "Auto Task"}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	readSnapshot := func() string {
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			t.Fatalf("Failed to read snapshot: %v", err)
		}
		return string(data)
	}

	if !strings.Contains(readSnapshot(), "Auto Task") {
		t.Fatalf("Snapshot does not contain the created task")
	}

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &models.ScheduleEntry{TaskID: task.ID, StartTime: start, EndTime: start.Add(time.Hour)}
	if err := db.AddScheduleEntry(ctx, entry); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if !strings.Contains(readSnapshot(), entry.ID) {
		t.Errorf("Snapshot was not updated after AddScheduleEntry")
	}

	if err := db.UpdateTaskState(ctx, task.ID, models.TaskStateScheduled); err != nil {
		t.Fatalf("Failed to update state: %v", err)
	}
	if !strings.Contains(readSnapshot(), `"state":"scheduled"`) {
		t.Errorf("Snapshot was not updated after UpdateTaskState")
	}

	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if strings.Contains(readSnapshot(), "Auto Task") {
		t.Errorf("Snapshot was not updated after DeleteTask")
	}
}
