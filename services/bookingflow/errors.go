package bookingflow

import (
	"errors"
	"fmt"

	"office-portal/services/conflict"
)

var (
	// ErrNotFound means the booking request id is unknown.
	ErrNotFound = errors.New("booking request not found")
	// ErrAlreadyHandled means the action does not apply to the request's
	// current status.
	ErrAlreadyHandled = errors.New("request already handled")
	// ErrNoChanges rejects a counter-proposal identical to the original request.
	ErrNoChanges = errors.New("no changes proposed")
	// ErrNotOwner means the caller is not the requester of the request.
	ErrNotOwner = errors.New("not the requester of this booking request")
	// ErrForbidden means the caller's role does not allow the action.
	ErrForbidden = errors.New("not allowed")
)

// ValidationError reports a missing or malformed field before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError carries the overlapping reservations that blocked a
// materialization or direct booking.
type ConflictError struct {
	Conflicts []conflict.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservation conflicts with %d existing booking(s)", len(e.Conflicts))
}
