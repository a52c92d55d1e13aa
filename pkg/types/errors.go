// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInvalidPoolSize indicates a fixed pool size outside [MinPoolSize, MaxPoolSize]
	ErrInvalidPoolSize = errors.New("invalid pool size")

	// ErrInvalidConfig indicates an invalid pool configuration value
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNilTask indicates Post was called without a task function
	ErrNilTask = errors.New("task function cannot be nil")

	// ErrPoolNotRunning indicates the pool no longer accepts work
	ErrPoolNotRunning = errors.New("thread pool is not running")
)

// TaskPanicError describes a panic recovered from a task function
type TaskPanicError struct {
	// WorkerID is the ID of the worker that ran the task, -1 when not run by a pool worker
	WorkerID int

	// Value is the value passed to panic
	Value any

	// Stack is the goroutine stack captured at recovery
	Stack string
}

// Error implements the error interface
func (e *TaskPanicError) Error() string {
	if e.WorkerID < 0 {
		return fmt.Sprintf("task panic: %v", e.Value)
	}
	return fmt.Sprintf("task panic in worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsTaskPanic checks if an error is a recovered task panic
func IsTaskPanic(err error) bool {
	var panicErr *TaskPanicError
	return errors.As(err, &panicErr)
}
