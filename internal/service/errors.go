package service

import "errors"

// ErrNotAttended is returned when certificate issuance is attempted
// for an entry whose attendance record is not in the attended state.
var ErrNotAttended = errors.New("entry not checked in")

// ValidationError reports malformed input rejected before any state
// change.  It is always safe to retry after correcting the request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// invalid is shorthand for building a ValidationError.
func invalid(reason string) error { return &ValidationError{Reason: reason} }
