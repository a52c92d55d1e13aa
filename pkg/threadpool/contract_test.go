package threadpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gothreadpool/internal/testutils"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// poolFactories builds every pool variant for contract tests
func poolFactories() map[string]func(t *testing.T) joinablePool {
	return map[string]func(t *testing.T) joinablePool{
		"fixed": func(t *testing.T) joinablePool {
			return newTestFixedPool(t, 3, nil)
		},
		"cached": func(t *testing.T) joinablePool {
			return newTestCachedPool(t, time.Minute, time.Minute, nil)
		},
	}
}

func TestThreadPoolContract_RejectAfterShutdown(t *testing.T) {
	for name, factory := range poolFactories() {
		t.Run(name, func(t *testing.T) {
			pool := factory(t)
			mustPost(t, pool, func(...any) {})

			pool.Shutdown()
			require.False(t, pool.Running())

			var ran testutils.Counter
			for i := 0; i < 10; i++ {
				ok, err := pool.Post(func(...any) { ran.Inc() })
				assert.NoError(t, err)
				assert.False(t, ok)
			}

			require.True(t, pool.WaitForTermination(5*time.Second))
			assert.Equal(t, 0, ran.Load())
		})
	}
}

func TestThreadPoolContract_GracefulDrain(t *testing.T) {
	for name, factory := range poolFactories() {
		t.Run(name, func(t *testing.T) {
			pool := factory(t)

			const numTasks = 9
			var completed testutils.Counter
			for i := 0; i < numTasks; i++ {
				mustPost(t, pool, func(...any) {
					time.Sleep(5 * time.Millisecond)
					completed.Inc()
				})
			}

			pool.Shutdown()
			assert.True(t, pool.WaitForTermination(0))
			assert.Equal(t, numTasks, completed.Load())
			assert.True(t, pool.Terminated())
			assert.Equal(t, types.StateTerminated, pool.State())
			assert.Equal(t, 0, pool.Size())
		})
	}
}

func TestThreadPoolContract_KillDoesNotWaitForTasks(t *testing.T) {
	for name, factory := range poolFactories() {
		t.Run(name, func(t *testing.T) {
			pool := factory(t)
			gate := testutils.NewGate()
			defer gate.Open()

			var completed testutils.Counter
			mustPost(t, pool, func(...any) {
				gate.Wait()
				completed.Inc()
			})
			testutils.AssertEventually(t, func() bool { return gate.Waiting() == 1 })

			start := time.Now()
			pool.Kill()
			assert.True(t, pool.WaitForTermination(0))
			assert.Less(t, time.Since(start), time.Second)

			ok, err := pool.Post(func(...any) {})
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, 0, completed.Load())
			assert.False(t, pool.Terminated())
		})
	}
}

func TestThreadPoolContract_WaitersReleasedByShutdown(t *testing.T) {
	for name, factory := range poolFactories() {
		t.Run(name, func(t *testing.T) {
			pool := factory(t)
			gate := testutils.NewGate()
			defer gate.Open()

			mustPost(t, pool, func(...any) { gate.Wait() })
			testutils.AssertEventually(t, func() bool { return gate.Waiting() == 1 })

			results := make(chan bool, 3)
			for i := 0; i < 3; i++ {
				go func() { results <- pool.WaitForTermination(0) }()
			}
			testutils.AssertEventually(t, func() bool { return pool.terminatedEvent().Waiters() == 3 })

			pool.Shutdown()
			gate.Open()

			for i := 0; i < 3; i++ {
				select {
				case ok := <-results:
					assert.True(t, ok)
				case <-time.After(5 * time.Second):
					t.Fatal("waiter not released")
				}
			}
		})
	}
}
