package threadpool

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/jzx17/gothreadpool/pkg/event"
	"github.com/jzx17/gothreadpool/pkg/types"
)

type joinablePool interface {
	types.ThreadPool
	join()
	terminatedEvent() *event.Event
}

// killOnCleanup kills p when the test ends and waits for its goroutines,
// so nothing touches a mock clock after the test returns.
func killOnCleanup(t *testing.T, p joinablePool) {
	t.Helper()
	t.Cleanup(func() {
		p.Kill()
		p.join()
	})
}

func newTestFixedPool(t *testing.T, size int, clock quartz.Clock) *FixedThreadPool {
	t.Helper()

	config := &FixedThreadPoolConfig{
		Size:         size,
		HealInterval: time.Second,
		Clock:        clock,
	}
	pool, err := NewFixedThreadPoolWithConfig(config)
	if err != nil {
		t.Fatalf("failed to create fixed pool: %v", err)
	}
	killOnCleanup(t, pool)
	return pool
}

func newTestCachedPool(t *testing.T, idle, sweep time.Duration, clock quartz.Clock) *CachedThreadPool {
	t.Helper()

	config := &CachedThreadPoolConfig{
		IdleTimeout:   idle,
		SweepInterval: sweep,
		Clock:         clock,
	}
	pool, err := NewCachedThreadPoolWithConfig(config)
	if err != nil {
		t.Fatalf("failed to create cached pool: %v", err)
	}
	killOnCleanup(t, pool)
	return pool
}

// mustPost posts fn and fails the test unless the pool accepted it
func mustPost(t *testing.T, p types.ThreadPool, fn types.TaskFunc, args ...any) {
	t.Helper()

	ok, err := p.Post(fn, args...)
	if err != nil || !ok {
		t.Fatalf("post rejected: ok=%v err=%v", ok, err)
	}
}
