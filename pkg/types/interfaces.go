// Package types defines core interfaces and types for the thread pool library
package types

import (
	"time"
)

// Pool size bounds for fixed pools
const (
	MinPoolSize = 1
	MaxPoolSize = 1024
)

// TaskFunc is a task body; it receives the arguments given to Post
type TaskFunc func(args ...any)

// ThreadPool defines the contract shared by every pool variant.
// Code that only submits work should depend on this interface.
type ThreadPool interface {
	// Post enqueues fn with args. It returns false when the pool is not running,
	// and ErrNilTask when fn is nil. Post never blocks.
	Post(fn TaskFunc, args ...any) (bool, error)

	// Shutdown stops accepting tasks and lets workers drain the queue
	Shutdown()

	// Kill stops the pool immediately, abandoning queued and running tasks
	Kill()

	// WaitForTermination blocks until the pool stops or timeout elapses.
	// A timeout <= 0 waits forever.
	WaitForTermination(timeout time.Duration) bool

	// Running reports whether the pool accepts tasks
	Running() bool

	// ShuttingDownOrShutdown reports whether the pool has left the running state
	ShuttingDownOrShutdown() bool

	// Terminated reports whether a graceful shutdown completed
	Terminated() bool

	// Size returns the number of live workers, 0 once not running
	Size() int

	// Status returns a diagnostic snapshot of every registered worker
	Status() []WorkerStatus

	// State returns the lifecycle state
	State() PoolState
}

// PoolState defines the lifecycle state of a pool
type PoolState int32

const (
	// StateRunning pool accepts tasks
	StateRunning PoolState = iota
	// StateShuttingDown pool is draining queued tasks
	StateShuttingDown
	// StateShutdown pool was killed
	StateShutdown
	// StateTerminated pool drained and every worker exited
	StateTerminated
)

// String returns the string representation of PoolState
func (ps PoolState) String() string {
	switch ps {
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateShutdown:
		return "Shutdown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// WorkerState defines the state of a worker
type WorkerState int32

const (
	// WorkerStateStarting worker was created but has not reached the queue yet
	WorkerStateStarting WorkerState = iota
	// WorkerStateIdle worker is waiting on the queue
	WorkerStateIdle
	// WorkerStateWorking worker is running a task
	WorkerStateWorking
	// WorkerStateStopping worker received a stop sentinel
	WorkerStateStopping
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateStarting:
		return "starting"
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// WorkerStatus is a diagnostic snapshot of one worker
type WorkerStatus struct {
	// ID is the worker ID, unique within its pool
	ID int

	// State is the last state the worker reported
	State WorkerState

	// IdleSince is when the worker last became idle, zero if it never did
	IdleSince time.Time

	// Alive is false once the worker goroutine has returned
	Alive bool

	// Processed is the number of tasks the worker completed
	Processed int64
}

// IsIdle checks if the worker is alive and idle
func (ws WorkerStatus) IsIdle() bool {
	return ws.Alive && ws.State == WorkerStateIdle
}

// IsActive checks if the worker is alive and running a task
func (ws WorkerStatus) IsActive() bool {
	return ws.Alive && ws.State == WorkerStateWorking
}

// PanicHandler observes a panic recovered from a task. Pools call it after the
// worker that ran the task has been marked dead.
type PanicHandler func(*TaskPanicError)
