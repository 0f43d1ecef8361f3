package calendar

import (
	"context"
	"sync"
	"time"
)

// DropRange computes where an event lands when dropped pointerY pixels
// below the top of day's grid. The duration is kept, never below
// MinDuration, and the start stays inside the day.
func DropRange(ev CalendarEvent, pointerY float64, day time.Time, g Geometry) TimeRange {
	dayStart, dayEnd := DayBounds(day)

	dur := ev.EndTime.Sub(ev.StartTime)
	if dur < MinDuration {
		dur = MinDuration
	}

	start := TimeAt(day, pointerY, g)
	if start.Before(dayStart) {
		start = dayStart
	}
	if latest := dayEnd.Add(-MinDuration); start.After(latest) {
		start = latest
	}

	return TimeRange{Start: start, End: start.Add(dur)}
}

// DragSession is a live move gesture on one event. Drop and Cancel may be
// called from different goroutines; only the first one takes effect.
type DragSession struct {
	surface *Surface

	mu     sync.Mutex
	closed bool

	Event CalendarEvent
	Day   time.Time
}

// Preview reports the range the event would get if dropped at pointerY.
func (d *DragSession) Preview(pointerY float64) TimeRange {
	return DropRange(d.Event, pointerY, d.Day, d.surface.geometry)
}

// Drop ends the gesture and asks the store to move the entry. On failure
// nothing is changed and the error matches ErrCollaboratorUnavailable.
func (d *DragSession) Drop(ctx context.Context, pointerY float64) (TimeRange, error) {
	if !d.close() {
		return TimeRange{}, ErrSessionClosed
	}
	defer d.surface.release(d)

	r := d.Preview(pointerY)
	if err := d.surface.commit(ctx, d.Event, r); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Cancel discards the gesture without touching the store.
func (d *DragSession) Cancel() {
	if d.close() {
		d.surface.release(d)
	}
}

// close marks the session finished and reports whether this call did it.
func (d *DragSession) close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.closed = true
	return true
}
