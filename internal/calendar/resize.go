package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Edge is the side of an event being dragged during a resize.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

func ParseEdge(s string) (Edge, error) {
	switch Edge(s) {
	case EdgeTop, EdgeBottom:
		return Edge(s), nil
	}
	return "", fmt.Errorf("unknown edge: %q", s)
}

type ResizeState int

const (
	ResizeIdle ResizeState = iota
	ResizeActive
	ResizeCommitting
)

func (s ResizeState) String() string {
	switch s {
	case ResizeActive:
		return "active"
	case ResizeCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// ResizeRange moves one edge of the event by deltaPx. The opposite edge is
// fixed and the result is never shorter than MinDuration.
func ResizeRange(ev CalendarEvent, edge Edge, deltaPx float64, g Geometry) TimeRange {
	delta := snap(PixelsToDuration(deltaPx, g.HourHeightPx), g.Snap)
	start, end := ev.StartTime, ev.EndTime

	switch edge {
	case EdgeTop:
		start = start.Add(delta)
		if end.Sub(start) < MinDuration {
			start = end.Add(-MinDuration)
		}
	default:
		end = end.Add(delta)
		if end.Sub(start) < MinDuration {
			end = start.Add(MinDuration)
		}
	}
	return TimeRange{Start: start, End: end}
}

// ResizePreview is transient feedback for an in-progress resize. It is
// never written to the store.
type ResizePreview struct {
	Range    TimeRange `json:"range"`
	Position Position  `json:"position"`
}

// ResizeSession tracks one edge drag from press to release. Its methods are
// safe to call from different goroutines.
type ResizeSession struct {
	surface *Surface

	mu    sync.Mutex
	state ResizeState

	Event          CalendarEvent
	Edge           Edge
	Day            time.Time
	AnchorPointerY float64
	OriginalTop    float64
	OriginalHeight float64
	LivePointerY   float64
}

func (s *ResizeSession) State() ResizeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Move records the pointer and returns preview geometry for it.
func (s *ResizeSession) Move(pointerY float64) (ResizePreview, error) {
	s.mu.Lock()
	if s.state != ResizeActive {
		s.mu.Unlock()
		return ResizePreview{}, ErrSessionClosed
	}
	s.LivePointerY = pointerY
	s.mu.Unlock()

	r := ResizeRange(s.Event, s.Edge, pointerY-s.AnchorPointerY, s.surface.geometry)
	return ResizePreview{
		Range:    r,
		Position: positionOfRange(r, s.Day, s.surface.geometry.HourHeightPx),
	}, nil
}

// Release commits the range for the final pointer position. The range is
// recomputed from pointerY rather than taken from the last preview.
func (s *ResizeSession) Release(ctx context.Context, pointerY float64) (TimeRange, error) {
	s.mu.Lock()
	if s.state != ResizeActive {
		s.mu.Unlock()
		return TimeRange{}, ErrSessionClosed
	}
	s.LivePointerY = pointerY
	s.state = ResizeCommitting
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = ResizeIdle
		s.mu.Unlock()
		s.surface.release(s)
	}()

	r := ResizeRange(s.Event, s.Edge, pointerY-s.AnchorPointerY, s.surface.geometry)
	if err := s.surface.commit(ctx, s.Event, r); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Cancel drops the session, e.g. when pointer capture is lost.
func (s *ResizeSession) Cancel() {
	s.mu.Lock()
	if s.state != ResizeActive {
		s.mu.Unlock()
		return
	}
	s.state = ResizeIdle
	s.mu.Unlock()
	s.surface.release(s)
}
