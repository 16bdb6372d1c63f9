// Package failure holds the error kinds shared by the services. Callers
// match on kinds with errors.Is; wrapped context is added with fmt.Errorf.
package failure

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("forbidden")
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("conflict")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrBusy                     = errors.New("store busy")
	ErrStoreFailure             = errors.New("store failure")
)

// InsufficientError reports how many tickets were left when a purchase was
// rejected for lack of availability.
type InsufficientError struct {
	EventID   int64
	Requested int
	Remaining int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient availability: event %d: requested %d, remaining %d", e.EventID, e.Requested, e.Remaining)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientAvailability
}

// Invalid wraps ErrInvalidRequest with a reason.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidRequest)
}

// Remaining extracts the remaining count from an availability failure.
func Remaining(err error) (int, bool) {
	var ie *InsufficientError
	if errors.As(err, &ie) {
		return ie.Remaining, true
	}
	return 0, false
}

var kinds = []error{
	ErrInvalidRequest,
	ErrUnauthorized,
	ErrForbidden,
	ErrNotFound,
	ErrConflict,
	ErrInsufficientAvailability,
	ErrBusy,
	ErrStoreFailure,
}

// Kind returns the sentinel err matches. Unclassified errors are
// ErrStoreFailure.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrStoreFailure
}

// Retryable reports whether err may be retried by re-running the whole unit
// of work.
func Retryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
