// Package event provides a one-shot broadcast signal.
//
// An Event starts unset. Set releases every goroutine blocked in Wait and makes
// later Wait calls return immediately, until Reset clears it again.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Event is a one-shot, multi-waiter broadcast signal. The zero value is not usable; use New.
type Event struct {
	mu      sync.Mutex
	set     bool
	waiters int
	// notify is closed by Set; Reset installs a fresh channel
	notify chan struct{}
	clock  types.Clock
}

// Option configures an Event
type Option func(*Event)

// WithClock sets the clock used for Wait timeouts
func WithClock(clock types.Clock) Option {
	return func(e *Event) {
		e.clock = clock
	}
}

// New creates an unset Event
func New(opts ...Option) *Event {
	e := &Event{
		notify: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.clock = types.ClockOrDefault(e.clock)
	return e
}

// IsSet reports whether the event is set
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Set marks the event and wakes every current waiter. Calling Set on a set event has no effect.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set {
		return
	}
	e.set = true
	e.waiters = 0
	close(e.notify)
}

// Reset clears the event. Goroutines already released by Set are unaffected.
func (e *Event) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.set {
		return
	}
	e.set = false
	e.notify = make(chan struct{})
}

// Waiters returns the number of goroutines currently blocked in Wait
func (e *Event) Waiters() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waiters
}

// Wait blocks until the event is set or timeout elapses. A timeout <= 0 waits
// forever. It returns true if the event was set, false on timeout.
func (e *Event) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		notify, ok := e.register()
		if !ok {
			<-notify
		}
		return true
	}

	// the timer exists before the waiter is counted
	timer := e.clock.NewTimer(timeout)
	defer timer.Stop()

	notify, ok := e.register()
	if ok {
		return true
	}

	select {
	case <-notify:
		return true
	case <-timer.C:
		return e.deregister(notify)
	}
}

// WaitContext blocks until the event is set or ctx is done
func (e *Event) WaitContext(ctx context.Context) bool {
	notify, ok := e.register()
	if ok {
		return true
	}

	select {
	case <-notify:
		return true
	case <-ctx.Done():
		return e.deregister(notify)
	}
}

// register returns (nil, true) when already set, otherwise records a waiter
// and returns the channel to block on.
func (e *Event) register() (<-chan struct{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set {
		return nil, true
	}
	e.waiters++
	return e.notify, false
}

// deregister drops a waiter that gave up. If Set raced with the timeout the
// wait still counts as successful.
func (e *Event) deregister(notify <-chan struct{}) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-notify:
		return true
	default:
	}
	e.waiters--
	return false
}
