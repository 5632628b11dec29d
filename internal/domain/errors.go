package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPlanID = errors.New("plan id is required")
	ErrMissingTaskID = errors.New("task id is required")
	ErrPlanNotFound  = errors.New("plan not found")
	ErrTaskNotFound  = errors.New("task not found")
)

// ValidationError reports a missing or invalid field detected before any
// store call is attempted.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(err error) error {
	return &ValidationError{Err: err}
}

// PersistenceError wraps a failed task store call. The underlying error is
// propagated unchanged to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("task store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
