package services

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is returned (never panicked) when an event is missing a
// required field (spec.md §7 "Malformed event").
var ErrInvalidEvent = errors.New("invalid event")

// InvalidEventError wraps ErrInvalidEvent with the specific missing field,
// matching the teacher's pattern of wrapping driver errors with context
// (see pkg/database.NewMongoDB's fmt.Errorf("failed to connect...: %v")).
func InvalidEventError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, reason)
}
