package calendar

import (
	"math"
	"time"
)

const (
	// MinDuration is the shortest schedule entry the engine will produce.
	MinDuration = 15 * time.Minute
	// MinEventHeightPx keeps short events visible and clickable.
	MinEventHeightPx = 20.0

	DefaultHourHeightPx = 60.0
	DefaultSnap         = time.Minute
)

// Geometry describes the vertical time grid of a day column.
type Geometry struct {
	HourHeightPx float64
	// Snap is the time resolution pointer positions are rounded to.
	Snap time.Duration
}

func DefaultGeometry() Geometry {
	return Geometry{HourHeightPx: DefaultHourHeightPx, Snap: DefaultSnap}
}

func (g Geometry) Validate() error {
	if g.HourHeightPx <= 0 {
		return ErrInvalidGeometry
	}
	return nil
}

// TimeRange is a half-open [Start, End) interval.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Position is the vertical placement of an event inside one day column.
type Position struct {
	Top             float64 `json:"top"`
	Height          float64 `json:"height"`
	StartsBeforeDay bool    `json:"starts_before_day"`
	EndsAfterDay    bool    `json:"ends_after_day"`
}

// DayBounds returns local midnight of day and of the following day, in
// day's location.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// PositionOf clips the event to the reference day and maps it to pixels.
func PositionOf(ev CalendarEvent, day time.Time, hourHeightPx float64) Position {
	return positionOfRange(TimeRange{Start: ev.StartTime, End: ev.EndTime}, day, hourHeightPx)
}

func positionOfRange(r TimeRange, day time.Time, hourHeightPx float64) Position {
	dayStart, dayEnd := DayBounds(day)

	start, end := r.Start, r.End
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if end.Before(start) {
		end = start
	}

	height := end.Sub(start).Hours() * hourHeightPx
	if height < MinEventHeightPx {
		height = MinEventHeightPx
	}

	return Position{
		Top:             start.Sub(dayStart).Hours() * hourHeightPx,
		Height:          height,
		StartsBeforeDay: r.Start.Before(dayStart),
		EndsAfterDay:    r.End.After(dayEnd),
	}
}

// PixelsToDuration converts a vertical distance into elapsed time.
// A non-positive hour height yields zero instead of dividing by it, and
// distances beyond the range of time.Duration saturate.
func PixelsToDuration(px, hourHeightPx float64) time.Duration {
	if hourHeightPx <= 0 || math.IsNaN(px) {
		return 0
	}
	ns := px / hourHeightPx * float64(time.Hour)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

// TimeAt is the inverse of the top offset: the instant y pixels below the
// start of day.
func TimeAt(day time.Time, y float64, g Geometry) time.Time {
	dayStart, _ := DayBounds(day)
	return dayStart.Add(snap(PixelsToDuration(y, g.HourHeightPx), g.Snap))
}

func snap(d, resolution time.Duration) time.Duration {
	if resolution <= 0 {
		return d
	}
	return d.Round(resolution)
}
