// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Default polling parameters for eventually-style assertions
const (
	WaitTimeout = 5 * time.Second
	WaitTick    = 5 * time.Millisecond
)

// AssertEventually waits for condition to be true
func AssertEventually(t testing.TB, condition func() bool, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Eventually(t, condition, WaitTimeout, WaitTick, msgAndArgs...)
}

// AssertNever checks that condition stays false for the given window
func AssertNever(t testing.TB, condition func() bool, window time.Duration, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Never(t, condition, window, WaitTick, msgAndArgs...)
}

// Gate blocks tasks until it is opened
type Gate struct {
	open    chan struct{}
	once    sync.Once
	waiting int64
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{open: make(chan struct{})}
}

// Wait blocks until the gate opens
func (g *Gate) Wait() {
	atomic.AddInt64(&g.waiting, 1)
	defer atomic.AddInt64(&g.waiting, -1)
	<-g.open
}

// Waiting returns the number of goroutines blocked in Wait
func (g *Gate) Waiting() int {
	return int(atomic.LoadInt64(&g.waiting))
}

// Open releases every current and future waiter
func (g *Gate) Open() {
	g.once.Do(func() { close(g.open) })
}

// Counter is a concurrency-safe counter for task side effects
type Counter struct {
	n int64
}

// Inc increments the counter
func (c *Counter) Inc() {
	atomic.AddInt64(&c.n, 1)
}

// Load returns the current value
func (c *Counter) Load() int {
	return int(atomic.LoadInt64(&c.n))
}
