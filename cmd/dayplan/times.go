package main

import (
	"fmt"
	"time"

	"github.com/ldi/dayplan/internal/calendar"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	clockLayout    = "15:04"
)

// parseDay reads a YYYY-MM-DD day in loc. Empty means today.
func (e *env) parseDay(v string) (time.Time, error) {
	if v == "" {
		return e.today(), nil
	}
	d, err := time.ParseInLocation(dateLayout, v, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	return d, nil
}

// parseDateTime accepts RFC3339 or "YYYY-MM-DD HH:MM" in loc.
func (e *env) parseDateTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, v, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DD HH:MM or RFC3339", v)
	}
	return t, nil
}

// parseClock places an HH:MM wall clock time on day.
func parseClock(day time.Time, v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, day.Format(dateLayout)+" "+v, day.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q, expected HH:MM", v)
	}
	return t, nil
}

// pointerFor is the grid offset of t on day, the inverse of
// calendar.TimeAt.
func pointerFor(day, t time.Time, g calendar.Geometry) float64 {
	start, _ := calendar.DayBounds(day)
	return t.Sub(start).Hours() * g.HourHeightPx
}

func formatRange(r calendar.TimeRange, loc *time.Location) string {
	return fmt.Sprintf("%s-%s", r.Start.In(loc).Format(clockLayout), r.End.In(loc).Format(clockLayout))
}
