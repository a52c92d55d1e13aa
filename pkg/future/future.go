// Package future provides a value computed asynchronously on a thread pool
package future

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jzx17/gothreadpool/internal/recovery"
	"github.com/jzx17/gothreadpool/pkg/event"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// State defines the state of a Future
type State int

const (
	// Pending the computation has not finished
	Pending State = iota
	// Fulfilled the computation returned a value
	Fulfilled
	// Rejected the computation returned an error or panicked
	Rejected
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Func computes the value of a Future
type Func func() (any, error)

// Future holds the eventual result of a Func posted to a pool
type Future struct {
	mu    sync.RWMutex
	state State
	value any
	err   error

	done *event.Event
}

// Option configures a Future
type Option func(*options)

type options struct {
	clock types.Clock
}

// WithClock sets the clock used by Wait and Value timeouts
func WithClock(clock types.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New posts fn to pool and returns a Future for its result.
// It fails with types.ErrPoolNotRunning when the pool rejects the task.
func New(pool types.ThreadPool, fn Func, opts ...Option) (*Future, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil: %w", types.ErrInvalidConfig)
	}
	if fn == nil {
		return nil, types.ErrNilTask
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &Future{done: event.New(event.WithClock(o.clock))}
	ok, err := pool.Post(func(...any) { f.run(fn) })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrPoolNotRunning
	}
	return f, nil
}

// run executes fn; a panic rejects the future instead of killing the worker
func (f *Future) run(fn Func) {
	var value any
	var err error

	if panicErr := recovery.Run(-1, func() { value, err = fn() }); panicErr != nil {
		err = panicErr
	}

	f.mu.Lock()
	if err != nil {
		f.state = Rejected
		f.err = err
	} else {
		f.state = Fulfilled
		f.value = value
	}
	f.mu.Unlock()

	f.done.Set()
}

// State returns the current state
func (f *Future) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Wait blocks until the future completes or timeout elapses; timeout <= 0 waits forever
func (f *Future) Wait(timeout time.Duration) bool {
	return f.done.Wait(timeout)
}

// Value waits for the result. ok is false when the wait timed out or the future was rejected.
func (f *Future) Value(timeout time.Duration) (value any, ok bool) {
	if !f.Wait(timeout) {
		return nil, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value, f.state == Fulfilled
}

// Await waits for the result until ctx is done
func (f *Future) Await(ctx context.Context) (any, error) {
	if !f.done.WaitContext(ctx) {
		return nil, ctx.Err()
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value, f.err
}

// Err returns the rejection reason, nil while pending or when fulfilled
func (f *Future) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}
