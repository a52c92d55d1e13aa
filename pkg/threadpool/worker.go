package threadpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gothreadpool/internal/recovery"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// worker is the record a pool keeps for one worker goroutine
type worker struct {
	id    int
	state int32 // atomic types.WorkerState

	// Unix nanosecond timestamp of the last transition to idle
	idleSince int64
	processed int64

	crashed atomic.Bool

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	// busy is guarded by the owning pool's mutex
	busy bool

	clock types.Clock
}

func newWorker(id int, clock types.Clock) *worker {
	return &worker{
		id:    id,
		state: int32(types.WorkerStateStarting),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		clock: clock,
	}
}

// State returns the current worker state
func (w *worker) State() types.WorkerState {
	return types.WorkerState(atomic.LoadInt32(&w.state))
}

func (w *worker) setState(state types.WorkerState) {
	atomic.StoreInt32(&w.state, int32(state))
}

// markIdle records the idle transition time before publishing the state,
// so a sweep never sees an idle worker with a stale timestamp.
func (w *worker) markIdle() {
	atomic.StoreInt64(&w.idleSince, w.clock.Now().UnixNano())
	w.setState(types.WorkerStateIdle)
}

// IdleFor returns how long the worker has been idle, 0 if it is not idle
func (w *worker) IdleFor(now time.Time) time.Duration {
	if w.State() != types.WorkerStateIdle {
		return 0
	}
	return now.Sub(time.Unix(0, atomic.LoadInt64(&w.idleSince)))
}

// dead reports whether the goroutine has returned or is about to after a panic
func (w *worker) dead() bool {
	if w.crashed.Load() {
		return true
	}
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// stop asks the worker to return at its next queue wait
func (w *worker) stop() {
	w.quitOnce.Do(func() { close(w.quit) })
}

// execute runs t, recovering a panic. A non-nil result means the worker must
// not take another task; the pool calls markCrashed once the panic is reported.
func (w *worker) execute(t *task) *types.TaskPanicError {
	panicErr := recovery.Run(w.id, func() {
		t.fn(t.args...)
	})
	if panicErr != nil {
		return panicErr
	}
	atomic.AddInt64(&w.processed, 1)
	return nil
}

func (w *worker) markCrashed() {
	w.crashed.Store(true)
}

// Status gets a diagnostic snapshot of the worker
func (w *worker) Status() types.WorkerStatus {
	var idleSince time.Time
	if ns := atomic.LoadInt64(&w.idleSince); ns != 0 {
		idleSince = time.Unix(0, ns)
	}
	return types.WorkerStatus{
		ID:        w.id,
		State:     w.State(),
		IdleSince: idleSince,
		Alive:     !w.dead(),
		Processed: atomic.LoadInt64(&w.processed),
	}
}
