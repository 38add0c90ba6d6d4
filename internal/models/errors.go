package models

import "errors"

// Sentinel errors for the item lifecycle. Callers match them with
// errors.Is; handlers map them to HTTP status codes.
var (
	// ErrInvalidTransition is returned when the requested status is not
	// reachable from the item's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUndoNotAllowed is returned when undo is requested from a state
	// with no defined predecessor.
	ErrUndoNotAllowed = errors.New("undo not allowed")

	// ErrInvalidPresetKey is returned when a comment preset key is not
	// in the fixed catalog.
	ErrInvalidPresetKey = errors.New("invalid preset key")

	// ErrValidation is returned for caller input that fails validation
	// before any mutation takes place.
	ErrValidation = errors.New("validation failed")
)
