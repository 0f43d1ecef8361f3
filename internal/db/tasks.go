package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/ldi/dayplan/pkg/models"
)

const taskColumns = `id, title, state, due_at, estimated_hours, created_at, updated_at`

// CreateTask inserts a task together with any schedule entries it carries.
// Empty IDs are filled with new UUIDs and an empty state becomes filed.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createTask(ctx, tx, t); err != nil {
		return err
	}
	for i := range t.ScheduleHistory {
		e := &t.ScheduleHistory[i]
		e.TaskID = t.ID
		if err := insertEntry(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

func createTask(ctx context.Context, exec executor, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.State == "" {
		t.State = models.TaskStateFiled
	}

	query := `
		INSERT INTO tasks (id, title, state, due_at, estimated_hours)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query, t.ID, t.Title, t.State, utcPtr(t.DueDateTime), t.EstimatedHours).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task and its schedule history. It returns nil, nil
// when no such task exists.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := db.queryTasks(ctx, db.DB, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// ListTasks returns tasks, optionally filtered by state, oldest first.
func (db *DB) ListTasks(ctx context.Context, state *models.TaskState) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}

	if state != nil {
		query += " AND state = ?"
		args = append(args, *state)
	}
	query += " ORDER BY created_at ASC, id ASC"

	return db.queryTasks(ctx, db.DB, query, args...)
}

// GetAllTasks returns every task with its full schedule history, read in
// one transaction so tasks and entries come from the same snapshot.
func (db *DB) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tasks, err := db.queryTasks(ctx, tx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return tasks, tx.Commit()
}

func (db *DB) queryTasks(ctx context.Context, exec executor, query string, args ...any) ([]*models.Task, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	var tasks []*models.Task
	byID := make(map[string]*models.Task)
	for rows.Next() {
		t := &models.Task{}
		err := rows.Scan(&t.ID, &t.Title, &t.State, &t.DueDateTime, &t.EstimatedHours, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if len(tasks) == 0 {
		return tasks, nil
	}
	if err := attachEntries(ctx, exec, byID); err != nil {
		return nil, err
	}
	return tasks, nil
}

func attachEntries(ctx context.Context, exec executor, byID map[string]*models.Task) error {
	rows, err := exec.QueryContext(ctx, `SELECT id, task_id, start_at, end_at FROM schedule_entries`)
	if err != nil {
		return fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.StartTime, &e.EndTime); err != nil {
			return fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		if t, ok := byID[e.TaskID]; ok {
			t.ScheduleHistory = append(t.ScheduleHistory, e)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	for _, t := range byID {
		sort.SliceStable(t.ScheduleHistory, func(i, j int) bool {
			return t.ScheduleHistory[i].StartTime.Before(t.ScheduleHistory[j].StartTime)
		})
	}
	return nil
}

// UpdateTask updates title, due date and estimate.
func (db *DB) UpdateTask(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, due_at = ?, estimated_hours = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING updated_at
	`
	err := db.QueryRowContext(ctx, query, t.Title, utcPtr(t.DueDateTime), t.EstimatedHours, t.ID).Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, t.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// UpdateTaskState moves a task to another lifecycle state.
func (db *DB) UpdateTaskState(ctx context.Context, id string, state models.TaskState) error {
	if _, err := models.ParseTaskState(string(state)); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE tasks SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("failed to update task state: %w", err)
	}
	if err := expectOneRow(res, ErrTaskNotFound, id); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

// DeleteTask deletes a task by its ID; its entries go with it.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if err := expectOneRow(res, ErrTaskNotFound, id); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func expectOneRow(res sql.Result, notFound error, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
