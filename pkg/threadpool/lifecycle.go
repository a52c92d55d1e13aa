package threadpool

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gothreadpool/pkg/event"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// poolCore holds the state and operations common to every pool variant.
// mu serializes registry mutation, state transitions and enqueueing.
type poolCore struct {
	kind string

	mu      sync.Mutex
	state   int32 // atomic types.PoolState, written with mu held
	workers []*worker
	nextID  int
	queue   *taskQueue

	terminated *event.Event

	// routines tracks worker and sweep goroutines
	routines sync.WaitGroup

	clock        types.Clock
	logger       *slog.Logger
	panicHandler types.PanicHandler
}

func newPoolCore(kind string, clock types.Clock, logger *slog.Logger, panicHandler types.PanicHandler) *poolCore {
	clock = types.ClockOrDefault(clock)
	if logger == nil {
		logger = discardLogger()
	}

	return &poolCore{
		kind:         kind,
		state:        int32(types.StateRunning),
		queue:        newTaskQueue(),
		terminated:   event.New(event.WithClock(clock)),
		clock:        clock,
		logger:       logger.With("pool", kind),
		panicHandler: panicHandler,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// State returns the lifecycle state
func (c *poolCore) State() types.PoolState {
	return types.PoolState(atomic.LoadInt32(&c.state))
}

func (c *poolCore) setStateLocked(state types.PoolState) {
	atomic.StoreInt32(&c.state, int32(state))
}

// Running reports whether the pool accepts tasks
func (c *poolCore) Running() bool {
	return c.State() == types.StateRunning
}

// ShuttingDownOrShutdown reports whether the pool has left the running state
func (c *poolCore) ShuttingDownOrShutdown() bool {
	return !c.Running()
}

// Terminated reports whether a graceful shutdown completed
func (c *poolCore) Terminated() bool {
	return c.State() == types.StateTerminated
}

// WaitForTermination blocks until the last worker exits after Shutdown, the
// pool is killed, or timeout elapses. A timeout <= 0 waits forever.
func (c *poolCore) WaitForTermination(timeout time.Duration) bool {
	switch c.State() {
	case types.StateShutdown, types.StateTerminated:
		return true
	}
	return c.terminated.Wait(timeout)
}

// Size returns the number of live workers, 0 once not running
func (c *poolCore) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Running() {
		return 0
	}
	return c.liveWorkersLocked()
}

// Status returns a snapshot of every registered worker
func (c *poolCore) Status() []types.WorkerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := make([]types.WorkerStatus, len(c.workers))
	for i, w := range c.workers {
		status[i] = w.Status()
	}
	return status
}

// QueueLength returns the number of queued items
func (c *poolCore) QueueLength() int {
	return c.queue.Len()
}

func (c *poolCore) liveWorkersLocked() int {
	live := 0
	for _, w := range c.workers {
		if !w.dead() {
			live++
		}
	}
	return live
}

// newWorkerLocked allocates a worker record with the next ID
func (c *poolCore) newWorkerLocked() *worker {
	w := newWorker(c.nextID, c.clock)
	c.nextID++
	return w
}

// goTracked runs fn on a goroutine counted by routines
func (c *poolCore) goTracked(fn func()) {
	c.routines.Add(1)
	go func() {
		defer c.routines.Done()
		fn()
	}()
}

func (c *poolCore) terminatedEvent() *event.Event {
	return c.terminated
}

// join waits for every worker and sweep goroutine to return
func (c *poolCore) join() {
	c.routines.Wait()
}

// enqueueLocked pushes a task if the pool is running
func (c *poolCore) enqueueLocked(fn types.TaskFunc, args []any) bool {
	if !c.Running() {
		return false
	}
	return c.queue.Push(queueItem{task: &task{fn: fn, args: args}})
}

func (c *poolCore) removeWorkerLocked(w *worker) {
	for i, candidate := range c.workers {
		if candidate == w {
			c.workers = append(c.workers[:i], c.workers[i+1:]...)
			return
		}
	}
}

// pruneDeadLocked drops workers whose goroutine is gone
func (c *poolCore) pruneDeadLocked() int {
	kept := c.workers[:0]
	pruned := 0
	for _, w := range c.workers {
		if w.dead() {
			pruned++
			continue
		}
		kept = append(kept, w)
	}
	clear(c.workers[len(kept):])
	c.workers = kept
	return pruned
}

// terminateIfDrainedLocked completes a graceful shutdown once no worker remains
func (c *poolCore) terminateIfDrainedLocked() {
	if c.State() != types.StateShuttingDown || len(c.workers) > 0 {
		return
	}
	c.setStateLocked(types.StateTerminated)
	c.terminated.Set()
	c.logger.Debug("pool terminated")
}

// beginShutdownLocked switches to shutting down and queues one stop sentinel
// per live worker behind every task already accepted. It returns false if the
// pool was not running.
func (c *poolCore) beginShutdownLocked() bool {
	if !c.Running() {
		return false
	}
	c.setStateLocked(types.StateShuttingDown)
	c.pruneDeadLocked()

	for range c.workers {
		c.queue.Push(stopSentinel)
	}
	c.logger.Debug("pool shutting down", "workers", len(c.workers), "queued", c.queue.Len())

	c.terminateIfDrainedLocked()
	return true
}

// killLocked moves to the shutdown state from any state, discards queued work
// and tells every worker to return. Running tasks are abandoned, not interrupted.
func (c *poolCore) killLocked() {
	c.setStateLocked(types.StateShutdown)
	discarded := c.queue.Close()

	for _, w := range c.workers {
		w.stop()
	}
	abandoned := len(c.workers)
	clear(c.workers)
	c.workers = nil

	c.terminated.Set()
	c.logger.Debug("pool killed", "abandoned_workers", abandoned, "discarded_tasks", discarded)
}

// retire removes a worker that consumed a stop sentinel
func (c *poolCore) retire(w *worker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeWorkerLocked(w)
	c.logger.Debug("worker stopped", "worker_id", w.id)
	c.terminateIfDrainedLocked()
}

// reportPanic hands a recovered task panic to the configured handler, if any
func (c *poolCore) reportPanic(err *types.TaskPanicError) {
	if c.panicHandler != nil {
		c.panicHandler(err)
	}
}
