// Package faults defines the error taxonomy shared by the complaint
// services. Callers match with errors.Is / errors.As; wrapping with
// fmt.Errorf("...: %w", ...) preserves the category.
package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced complaint, user or department is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means the requested status is not reachable from
	// the current one, or the current status is terminal.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrCrossDepartment means an assignment would hand a complaint to staff
	// outside its department without the unrestricted role.
	ErrCrossDepartment = errors.New("assignee outside complaint department")
	// ErrDirectoryUnavailable is a transient staff directory failure. Safe
	// to retry; the escalation sweeper retries on its next cycle.
	ErrDirectoryUnavailable = errors.New("staff directory unavailable")
	// ErrConflict means other records still reference the entity.
	ErrConflict = errors.New("conflicting state")
)

// ForbiddenError carries the denial reason from the authorization guard.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// Forbidden builds a denial with a formatted reason.
func Forbidden(format string, args ...any) error {
	return &ForbiddenError{Reason: fmt.Sprintf(format, args...)}
}

// IsForbidden reports whether err is an authorization denial.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
