package calendar

import (
	"context"
	"sync"
	"time"

	appLog "github.com/ldi/dayplan/internal/log"
	"github.com/ldi/dayplan/pkg/models"
)

// TaskStore is the persistence capability the engine consumes.
type TaskStore interface {
	GetAllTasks(ctx context.Context) ([]*models.Task, error)
	UpdateScheduleEntry(ctx context.Context, taskID, entryID string, start, end time.Time) error
}

// Surface is one calendar surface: it owns the single gesture slot, so at
// most one drag or resize is in flight at a time.
type Surface struct {
	store    TaskStore
	geometry Geometry

	// CommitTimeout bounds each store update; zero means no timeout.
	CommitTimeout time.Duration
	// OnReload runs after a successful commit so the host can refresh.
	OnReload func(ctx context.Context)

	mu     sync.Mutex
	active any
}

func NewSurface(store TaskStore, geometry Geometry) (*Surface, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	return &Surface{store: store, geometry: geometry}, nil
}

func (s *Surface) Geometry() Geometry {
	return s.geometry
}

// Busy reports whether a gesture session is live.
func (s *Surface) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Load fetches the full task snapshot from the store.
func (s *Surface) Load(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.store.GetAllTasks(ctx)
	if err != nil {
		appLog.Error("load tasks failed", err)
		return nil, &CollaboratorError{Op: "get all tasks", Err: err}
	}
	return tasks, nil
}

// BeginDrag opens a move gesture on ev.
func (s *Surface) BeginDrag(ev CalendarEvent, day time.Time) (*DragSession, error) {
	d := &DragSession{surface: s, Event: ev, Day: day}
	if err := s.acquire(d, "drag", ev); err != nil {
		return nil, err
	}
	return d, nil
}

// BeginResize opens an edge drag on ev anchored at pointer anchorY.
func (s *Surface) BeginResize(ev CalendarEvent, edge Edge, anchorY float64, day time.Time) (*ResizeSession, error) {
	pos := PositionOf(ev, day, s.geometry.HourHeightPx)
	rs := &ResizeSession{
		surface:        s,
		state:          ResizeActive,
		Event:          ev,
		Edge:           edge,
		Day:            day,
		AnchorPointerY: anchorY,
		OriginalTop:    pos.Top,
		OriginalHeight: pos.Height,
		LivePointerY:   anchorY,
	}
	if err := s.acquire(rs, "resize", ev); err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *Surface) acquire(session any, kind string, ev CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		appLog.Debug("gesture rejected", "kind", kind, "entry", ev.Entry.ID)
		return ErrConcurrentGesture
	}
	s.active = session
	return nil
}

func (s *Surface) release(session any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == session {
		s.active = nil
	}
}

func (s *Surface) commit(ctx context.Context, ev CalendarEvent, r TimeRange) error {
	taskID := ev.Entry.TaskID
	if ev.Task != nil {
		taskID = ev.Task.ID
	}

	callCtx := ctx
	if s.CommitTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.CommitTimeout)
		defer cancel()
	}

	if err := s.store.UpdateScheduleEntry(callCtx, taskID, ev.Entry.ID, r.Start, r.End); err != nil {
		appLog.Error("schedule entry update failed", err, "task", taskID, "entry", ev.Entry.ID)
		return &CollaboratorError{Op: "update schedule entry", Err: err}
	}
	appLog.Info("schedule entry updated",
		"task", taskID,
		"entry", ev.Entry.ID,
		"start", r.Start.Format(time.RFC3339),
		"end", r.End.Format(time.RFC3339),
	)
	if s.OnReload != nil {
		s.OnReload(ctx)
	}
	return nil
}
