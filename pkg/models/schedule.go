package models

import "time"

// ScheduleEntry is one time-blocked occurrence of work on a task.
// Entries may span several days.
type ScheduleEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (e ScheduleEntry) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
