package calendar

import (
	"context"
	"time"
)

// Day loads the store and builds the view of day.
func (s *Surface) Day(ctx context.Context, day, now time.Time) (DayView, error) {
	tasks, err := s.Load(ctx)
	if err != nil {
		return DayView{}, err
	}
	return BuildDay(tasks, day, s.geometry, now), nil
}

// MoveEntry runs a whole drag gesture in one call: the entry is picked up on
// day and dropped at pointerY.
func (s *Surface) MoveEntry(ctx context.Context, day time.Time, taskID, entryID string, pointerY float64) (TimeRange, error) {
	ev, err := s.locate(ctx, day, taskID, entryID)
	if err != nil {
		return TimeRange{}, err
	}
	drag, err := s.BeginDrag(ev, day)
	if err != nil {
		return TimeRange{}, err
	}
	return drag.Drop(ctx, pointerY)
}

// ResizeEntry runs a whole edge drag in one call, from anchorY to pointerY.
func (s *Surface) ResizeEntry(ctx context.Context, day time.Time, taskID, entryID string, edge Edge, anchorY, pointerY float64) (TimeRange, error) {
	ev, err := s.locate(ctx, day, taskID, entryID)
	if err != nil {
		return TimeRange{}, err
	}
	session, err := s.BeginResize(ev, edge, anchorY, day)
	if err != nil {
		return TimeRange{}, err
	}
	return session.Release(ctx, pointerY)
}

func (s *Surface) locate(ctx context.Context, day time.Time, taskID, entryID string) (CalendarEvent, error) {
	view, err := s.Day(ctx, day, time.Now())
	if err != nil {
		return CalendarEvent{}, err
	}
	ev, ok := view.FindEvent(entryID)
	if !ok || ev.Task == nil || ev.Task.ID != taskID {
		return CalendarEvent{}, ErrEventNotFound
	}
	return ev.CalendarEvent, nil
}
