package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	appLog "github.com/ldi/dayplan/internal/log"
	"github.com/ldi/dayplan/pkg/models"
)

const snapshotVersion = 1

type snapshotMeta struct {
	RecordType string    `json:"record_type"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
}

type snapshotTask struct {
	RecordType string `json:"record_type"`
	*models.Task
}

// EnableAutoSnapshot sets up a hook that automatically exports a snapshot
// to the given path after every successful write operation.
func (db *DB) EnableAutoSnapshot(path string) {
	db.SetOnChange(func(ctx context.Context) {
		// Hooks are best-effort; the write has already committed.
		if err := db.ExportSnapshot(ctx, path); err != nil {
			appLog.Error("auto snapshot failed", err, "path", path)
		}
	})
}

// ExportSnapshot writes a JSONL snapshot to path atomically: a meta line
// followed by one line per task with its schedule history inlined.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	tasks, err := db.GetAllTasks(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := bufio.NewWriter(tempFile)
	enc := json.NewEncoder(w)
	if err := enc.Encode(snapshotMeta{RecordType: "meta", Version: snapshotVersion, ExportedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}
	for _, t := range tasks {
		if t.ScheduleHistory == nil {
			t.ScheduleHistory = []models.ScheduleEntry{}
		}
		if err := enc.Encode(snapshotTask{RecordType: "task", Task: t}); err != nil {
			return fmt.Errorf("failed to write snapshot task %s: %w", t.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ImportSnapshot reads a JSONL snapshot and upserts every task by id.
// An imported task's schedule history replaces the stored one.
func (db *DB) ImportSnapshot(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var base struct {
			RecordType string `json:"record_type"`
		}
		if err := json.Unmarshal(line, &base); err != nil {
			return fmt.Errorf("failed to unmarshal record on line %d: %w", lineNo, err)
		}

		switch base.RecordType {
		case "meta":
			// Skip meta
		case "task":
			var t models.Task
			if err := json.Unmarshal(line, &t); err != nil {
				return fmt.Errorf("failed to unmarshal task on line %d: %w", lineNo, err)
			}
			if err := upsertTask(ctx, tx, &t); err != nil {
				return err
			}
		default:
			appLog.Debug("skipping unknown snapshot record", "type", base.RecordType, "line", lineNo)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func upsertTask(ctx context.Context, exec executor, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.State == "" {
		t.State = models.TaskStateFiled
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := exec.ExecContext(ctx, `
		INSERT INTO tasks (id, title, state, due_at, estimated_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			due_at = excluded.due_at,
			estimated_hours = excluded.estimated_hours,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		t.ID, t.Title, t.State, utcPtr(t.DueDateTime), t.EstimatedHours, t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to sync task %s: %w", t.ID, err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM schedule_entries WHERE task_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear schedule for task %s: %w", t.ID, err)
	}
	for i := range t.ScheduleHistory {
		e := &t.ScheduleHistory[i]
		e.TaskID = t.ID
		if err := insertEntry(ctx, exec, e); err != nil {
			return err
		}
	}
	return nil
}
