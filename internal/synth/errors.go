package synth

import (
	"errors"
	"fmt"
)

// Error represents a synthesis failure.
//
// Synthesis errors include:
//   - Invalid schedule: too few points, duplicate markers, negative values
//   - Invalid parameter: worker/thread counts below 1, contention out of range
//   - Insufficient operations: the pool cannot cover the rate series
//
// All three abort synthesis; no partial hierarchy is ever returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes synthesis errors.
type ErrorCode string

const (
	// ErrCodeInvalidSchedule indicates a malformed or degenerate rate schedule.
	ErrCodeInvalidSchedule ErrorCode = "INVALID_SCHEDULE"

	// ErrCodeInvalidParameter indicates an out-of-range partition parameter.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeInsufficientOperations indicates the operation pool ran out before
	// every cell was filled. This is an internal invariant violation.
	ErrCodeInsufficientOperations ErrorCode = "INSUFFICIENT_OPERATIONS"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidSchedule returns true if the error is an invalid schedule error.
// Uses errors.As to handle wrapped errors.
func IsInvalidSchedule(err error) bool {
	return hasCode(err, ErrCodeInvalidSchedule)
}

// IsInvalidParameter returns true if the error is an invalid parameter error.
func IsInvalidParameter(err error) bool {
	return hasCode(err, ErrCodeInvalidParameter)
}

// IsInsufficientOperations returns true if the pool was exhausted.
func IsInsufficientOperations(err error) bool {
	return hasCode(err, ErrCodeInsufficientOperations)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newScheduleError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidSchedule,
		Message: fmt.Sprintf(format, args...),
	}
}

func newParameterError(name string, value any, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidParameter,
		Message: fmt.Sprintf(format, args...),
		Details: map[string]string{
			"parameter": name,
			"value":     fmt.Sprintf("%v", value),
		},
	}
}

func newInsufficientError(pool, need int64) *Error {
	return &Error{
		Code:    ErrCodeInsufficientOperations,
		Message: fmt.Sprintf("operation pool exhausted (%d available, %d needed)", pool, need),
		Details: map[string]string{
			"pool": fmt.Sprintf("%d", pool),
			"need": fmt.Sprintf("%d", need),
		},
	}
}
