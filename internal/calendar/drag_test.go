package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ldi/dayplan/pkg/models"
)

func TestDropRangeScenario(t *testing.T) {
	ev := event("a", at(9, 0), at(10, 0))
	r := DropRange(ev, 14.25*60, testDay, Geometry{HourHeightPx: 60, Snap: time.Minute})
	if !r.Start.Equal(at(14, 15)) || !r.End.Equal(at(15, 15)) {
		t.Errorf("expected 14:15-15:15, got %s-%s", r.Start.Format("15:04"), r.End.Format("15:04"))
	}
}

func TestDropRangeRoundsToResolution(t *testing.T) {
	ev := event("a", at(9, 0), at(9, 45))
	g := Geometry{HourHeightPx: 60, Snap: time.Minute}

	// 600.4px is 10:00:24, which rounds down to the minute.
	r := DropRange(ev, 600.4, testDay, g)
	if !r.Start.Equal(at(10, 0)) {
		t.Errorf("expected 10:00, got %v", r.Start.Format("15:04:05"))
	}
	if r.Duration() != 45*time.Minute {
		t.Errorf("expected duration preserved, got %v", r.Duration())
	}

	g.Snap = 15 * time.Minute
	r = DropRange(ev, 610, testDay, g)
	if !r.Start.Equal(at(10, 15)) {
		t.Errorf("expected quarter-hour snap to 10:15, got %v", r.Start.Format("15:04"))
	}
}

func TestDropRangeClampsToDay(t *testing.T) {
	g := Geometry{HourHeightPx: 60, Snap: time.Minute}
	ev := event("a", at(9, 0), at(11, 0))

	if r := DropRange(ev, -200, testDay, g); !r.Start.Equal(at(0, 0)) {
		t.Errorf("expected start clamped to midnight, got %v", r.Start)
	}
	r := DropRange(ev, 30*60, testDay, g)
	if !r.Start.Equal(at(23, 45)) {
		t.Errorf("expected start clamped to 23:45, got %v", r.Start.Format("15:04"))
	}
	if r.Duration() != 2*time.Hour {
		t.Errorf("expected duration preserved past midnight, got %v", r.Duration())
	}

	if r := DropRange(ev, 1e13, testDay, g); !r.Start.Equal(at(23, 45)) {
		t.Errorf("expected far drop clamped to 23:45, got %v", r.Start)
	}
	if r := DropRange(ev, -1e13, testDay, g); !r.Start.Equal(at(0, 0)) {
		t.Errorf("expected far drop clamped to midnight, got %v", r.Start)
	}
}

func TestDropRangeEnforcesMinimumDuration(t *testing.T) {
	ev := event("short", at(9, 0), at(9, 10))
	r := DropRange(ev, 12*60, testDay, DefaultGeometry())
	if r.Duration() != MinDuration {
		t.Errorf("expected %v, got %v", MinDuration, r.Duration())
	}
}

func TestDragSessionDropCommits(t *testing.T) {
	ev := event("a", at(9, 0), at(10, 0))
	store := &memStore{tasks: []*models.Task{ev.Task}}
	s := newSurface(t, store)

	reloads := 0
	s.OnReload = func(ctx context.Context) { reloads++ }

	d, err := s.BeginDrag(ev, testDay)
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	if !s.Busy() {
		t.Error("expected surface to be busy during drag")
	}

	if p := d.Preview(13 * 60); !p.Start.Equal(at(13, 0)) {
		t.Errorf("expected preview at 13:00, got %v", p.Start.Format("15:04"))
	}
	if len(store.updates) != 0 {
		t.Fatal("expected preview not to write")
	}

	r, err := d.Drop(context.Background(), 14.25*60)
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if !r.Start.Equal(at(14, 15)) {
		t.Errorf("expected 14:15, got %v", r.Start.Format("15:04"))
	}

	got := store.entry(ev.Task.ID, "a")
	if !got.StartTime.Equal(at(14, 15)) || !got.EndTime.Equal(at(15, 15)) {
		t.Errorf("expected stored 14:15-15:15, got %v-%v", got.StartTime, got.EndTime)
	}
	if reloads != 1 {
		t.Errorf("expected one reload, got %d", reloads)
	}
	if s.Busy() {
		t.Error("expected surface idle after drop")
	}

	if _, err := d.Drop(context.Background(), 0); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed on second drop, got %v", err)
	}
}

func TestDragSessionDropFailureLeavesEntry(t *testing.T) {
	ev := event("a", at(9, 0), at(10, 0))
	cause := errors.New("disk on fire")
	store := &memStore{tasks: []*models.Task{ev.Task}, fail: cause}
	s := newSurface(t, store)

	reloads := 0
	s.OnReload = func(ctx context.Context) { reloads++ }

	d, err := s.BeginDrag(ev, testDay)
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	_, err = d.Drop(context.Background(), 14*60)
	if !errors.Is(err, ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected underlying cause to be kept, got %v", err)
	}

	got := store.entry(ev.Task.ID, "a")
	if !got.StartTime.Equal(at(9, 0)) || !got.EndTime.Equal(at(10, 0)) {
		t.Errorf("expected entry untouched, got %v-%v", got.StartTime, got.EndTime)
	}
	if reloads != 0 {
		t.Errorf("expected no reload after failure, got %d", reloads)
	}
	if s.Busy() {
		t.Error("expected surface idle after failed drop")
	}
}

func TestDragSessionCancel(t *testing.T) {
	ev := event("a", at(9, 0), at(10, 0))
	store := &memStore{tasks: []*models.Task{ev.Task}}
	s := newSurface(t, store)

	d, err := s.BeginDrag(ev, testDay)
	if err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	d.Cancel()
	d.Cancel()

	if s.Busy() {
		t.Error("expected surface idle after cancel")
	}
	if len(store.updates) != 0 {
		t.Errorf("expected no writes, got %d", len(store.updates))
	}
	if _, err := d.Drop(context.Background(), 0); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after cancel, got %v", err)
	}
}
