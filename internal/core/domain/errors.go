package domain

import (
	"errors"
	"fmt"
)

// Location acquisition failures.
var (
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrSourceUnavailable = errors.New("location source unavailable")
	ErrTimedOut          = errors.New("location request timed out")
	ErrUnsupported       = errors.New("location source unsupported")
	ErrNoFixAvailable    = errors.New("no position fix available")
)

// Lifecycle and lookup failures.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrEmergencyNotFound = fmt.Errorf("emergency %w", ErrNotFound)
	ErrUnitNotFound      = fmt.Errorf("unit %w", ErrNotFound)
)

// Assignment failures.
var (
	ErrEmergencyNotPending = errors.New("emergency is not pending")
	ErrUnitNotAvailable    = errors.New("unit is not available")
	ErrOperationCancelled  = errors.New("operation cancelled")
)

// Validation failures.
var (
	ErrOutOfRange   = errors.New("value out of range")
	ErrNotAssigned  = errors.New("emergency has no assigned unit")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnitEngaged  = errors.New("unit is engaged on an emergency")
)

// ErrVersionConflict is returned by stores when a concurrent writer won the race.
// Stores retry internally; callers only see it if retries are exhausted.
var ErrVersionConflict = errors.New("record version conflict")

// ErrAlreadyExists is returned by stores when a record id is taken.
var ErrAlreadyExists = errors.New("record already exists")

// IsLocationError reports whether err belongs to the location taxonomy.
func IsLocationError(err error) bool {
	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrSourceUnavailable),
		errors.Is(err, ErrTimedOut),
		errors.Is(err, ErrUnsupported),
		errors.Is(err, ErrNoFixAvailable):
		return true
	}
	return false
}

// IsAssignmentError reports whether err is an expected assignment conflict.
func IsAssignmentError(err error) bool {
	switch {
	case errors.Is(err, ErrEmergencyNotPending),
		errors.Is(err, ErrUnitNotAvailable),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrOperationCancelled):
		return true
	}
	return false
}
