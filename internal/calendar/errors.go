package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable marks a failed or timed out store call.
	ErrCollaboratorUnavailable = errors.New("task store unavailable")
	// ErrConcurrentGesture is returned when a drag or resize starts while
	// another gesture session is live on the same surface.
	ErrConcurrentGesture = errors.New("another gesture is already in progress")
	ErrSessionClosed     = errors.New("gesture session already closed")
	ErrInvalidGeometry   = errors.New("hour height must be positive")
	ErrEventNotFound     = errors.New("schedule entry is not on that day")
)

// CollaboratorError wraps a failure of the external task store. It matches
// ErrCollaboratorUnavailable and the underlying cause with errors.Is.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrCollaboratorUnavailable, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// FailureNotice turns an engine error into the single human readable line
// shown to the user after a failed gesture.
func FailureNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConcurrentGesture):
		return "Another move or resize is still in progress."
	case errors.Is(err, ErrCollaboratorUnavailable):
		return "Could not save the change; the event stays at its original time."
	default:
		return fmt.Sprintf("Change rejected: %v", err)
	}
}
