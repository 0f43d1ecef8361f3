package models

import (
	"fmt"
	"time"
)

type TaskState string

const (
	TaskStateFiled     TaskState = "filed"
	TaskStateScheduled TaskState = "scheduled"
	TaskStateDoing     TaskState = "doing"
	TaskStateFinished  TaskState = "finished"
	TaskStateFailed    TaskState = "failed"
	TaskStateDeferred  TaskState = "deferred"
	TaskStateRemoved   TaskState = "removed"
)

// TaskStates lists every state in lifecycle order.
var TaskStates = []TaskState{
	TaskStateFiled,
	TaskStateScheduled,
	TaskStateDoing,
	TaskStateFinished,
	TaskStateFailed,
	TaskStateDeferred,
	TaskStateRemoved,
}

// ParseTaskState validates a user supplied state name.
func ParseTaskState(s string) (TaskState, error) {
	for _, st := range TaskStates {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task state: %q", s)
}

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	State          TaskState  `json:"state"`
	DueDateTime    *time.Time `json:"due_date_time,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// ScheduleHistory is ordered by start time.
	ScheduleHistory []ScheduleEntry `json:"schedule_history"`
}

// Entry returns the schedule entry with the given id.
func (t *Task) Entry(id string) (ScheduleEntry, bool) {
	for _, e := range t.ScheduleHistory {
		if e.ID == id {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}
