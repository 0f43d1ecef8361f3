package calendar

import (
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

// EstimateReport compares all time ever scheduled for a task with its
// estimate. It spans every day of the task's history.
type EstimateReport struct {
	Scheduled   time.Duration `json:"scheduled"`
	Estimated   time.Duration `json:"estimated"`
	HasEstimate bool          `json:"has_estimate"`
	Exceeds     bool          `json:"exceeds"`
}

func Estimate(t *models.Task) EstimateReport {
	var r EstimateReport
	for _, e := range t.ScheduleHistory {
		if d := e.Duration(); d > 0 {
			r.Scheduled += d
		}
	}
	if t.EstimatedHours != nil {
		r.HasEstimate = true
		r.Estimated = time.Duration(*t.EstimatedHours * float64(time.Hour))
		r.Exceeds = r.Scheduled > r.Estimated
	}
	return r
}
