package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ldi/dayplan/pkg/models"
)

// AddScheduleEntry appends a scheduled interval to a task's history.
func (db *DB) AddScheduleEntry(ctx context.Context, e *models.ScheduleEntry) error {
	if !e.EndTime.After(e.StartTime) {
		return ErrInvalidRange
	}

	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)`, e.TaskID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, e.TaskID)
	}

	if err := insertEntry(ctx, db.DB, e); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func insertEntry(ctx context.Context, exec executor, e *models.ScheduleEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := exec.ExecContext(ctx,
		`INSERT INTO schedule_entries (id, task_id, start_at, end_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.TaskID, e.StartTime.UTC(), e.EndTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to create schedule entry: %w", err)
	}
	return nil
}

// UpdateScheduleEntry moves one entry of one task to [start, end). The entry
// and the task's updated_at change together or not at all.
func (db *DB) UpdateScheduleEntry(ctx context.Context, taskID, entryID string, start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE schedule_entries SET start_at = ?, end_at = ? WHERE id = ? AND task_id = ?`,
		start.UTC(), end.UTC(), entryID, taskID)
	if err != nil {
		return fmt.Errorf("failed to update schedule entry: %w", err)
	}
	if err := expectOneRow(res, ErrEntryNotFound, entryID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to touch task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule entry update: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// DeleteScheduleEntry removes one entry from a task's history.
func (db *DB) DeleteScheduleEntry(ctx context.Context, taskID, entryID string) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM schedule_entries WHERE id = ? AND task_id = ?`, entryID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}
	if err := expectOneRow(res, ErrEntryNotFound, entryID); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
