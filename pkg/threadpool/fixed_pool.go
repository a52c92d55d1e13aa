package threadpool

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// FixedThreadPoolConfig defines configuration for fixed thread pool
type FixedThreadPoolConfig struct {
	// Size is the number of workers, in [types.MinPoolSize, types.MaxPoolSize]
	Size int

	// HealInterval is how often dead workers are replaced
	HealInterval time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger receives lifecycle events at debug level (optional)
	Logger *slog.Logger

	// PanicHandler observes task panics (optional)
	PanicHandler types.PanicHandler
}

// DefaultFixedThreadPoolConfig returns default configuration
func DefaultFixedThreadPoolConfig() *FixedThreadPoolConfig {
	return &FixedThreadPoolConfig{
		Size:         10,
		HealInterval: time.Second,
		Clock:        types.NewRealClock(),
	}
}

// FixedThreadPool keeps exactly Size workers alive while running. A worker
// killed by a task panic is replaced by the healing sweep.
type FixedThreadPool struct {
	*poolCore
	config *FixedThreadPoolConfig

	healStop chan struct{}
	healOnce sync.Once
}

var _ types.ThreadPool = (*FixedThreadPool)(nil)

// NewFixedThreadPool creates a started pool of size workers
func NewFixedThreadPool(size int) (*FixedThreadPool, error) {
	config := DefaultFixedThreadPoolConfig()
	config.Size = size
	return NewFixedThreadPoolWithConfig(config)
}

// NewFixedThreadPoolWithConfig creates a started pool from config
func NewFixedThreadPoolWithConfig(config *FixedThreadPoolConfig) (*FixedThreadPool, error) {
	if config == nil {
		config = DefaultFixedThreadPoolConfig()
	}

	// parameter validation
	if config.Size < types.MinPoolSize || config.Size > types.MaxPoolSize {
		return nil, fmt.Errorf("pool size must be in [%d, %d], got %d: %w",
			types.MinPoolSize, types.MaxPoolSize, config.Size, types.ErrInvalidPoolSize)
	}
	if config.HealInterval <= 0 {
		return nil, fmt.Errorf("heal interval must be positive, got %v: %w",
			config.HealInterval, types.ErrInvalidConfig)
	}

	core := newPoolCore("fixed", config.Clock, config.Logger, config.PanicHandler)
	pool := &FixedThreadPool{
		poolCore: core,
		config:   config,
		healStop: make(chan struct{}),
	}

	pool.mu.Lock()
	pool.workers = make([]*worker, 0, config.Size)
	for i := 0; i < config.Size; i++ {
		pool.workers = append(pool.workers, pool.spawnLocked())
	}
	pool.mu.Unlock()

	// the ticker exists before the constructor returns so a mock clock can drive it
	ticker := core.clock.NewTicker(config.HealInterval)
	core.goTracked(func() { pool.heal(ticker) })

	return pool, nil
}

// MaxSize returns the configured number of workers
func (p *FixedThreadPool) MaxSize() int {
	return p.config.Size
}

// Post enqueues fn with args. It returns false if the pool is not running.
func (p *FixedThreadPool) Post(fn types.TaskFunc, args ...any) (bool, error) {
	if fn == nil {
		return false, types.ErrNilTask
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enqueueLocked(fn, args), nil
}

// Shutdown stops accepting tasks; workers exit after the queue drains
func (p *FixedThreadPool) Shutdown() {
	p.mu.Lock()
	started := p.beginShutdownLocked()
	p.mu.Unlock()

	if started {
		p.stopHealing()
	}
}

// Kill stops the pool at once, discarding queued tasks
func (p *FixedThreadPool) Kill() {
	p.mu.Lock()
	p.killLocked()
	p.mu.Unlock()

	p.stopHealing()
}

func (p *FixedThreadPool) spawnLocked() *worker {
	w := p.newWorkerLocked()
	p.goTracked(func() { p.work(w) })
	p.logger.Debug("worker started", "worker_id", w.id)
	return w
}

func (p *FixedThreadPool) work(w *worker) {
	defer close(w.done)

	returned := false
	defer func() {
		if !returned {
			// the task called runtime.Goexit
			p.crash(w, nil)
		}
	}()

	p.serve(w)
	returned = true
}

func (p *FixedThreadPool) serve(w *worker) {
	for {
		w.markIdle()
		item, ok := p.queue.Pop(w.quit)
		if !ok {
			return
		}
		if item.isStop() {
			w.setState(types.WorkerStateStopping)
			p.retire(w)
			return
		}

		w.setState(types.WorkerStateWorking)
		if panicErr := w.execute(item.task); panicErr != nil {
			p.crash(w, panicErr)
			return
		}
	}
}

// crash handles a worker lost to its task, by panic or by runtime.Goexit
// (panicErr is nil). While running the dead worker keeps its slot until the
// healing sweep replaces it. While shutting down it is replaced at once, so
// the queue still drains and its stop sentinel is consumed.
func (p *FixedThreadPool) crash(w *worker, panicErr *types.TaskPanicError) {
	if panicErr != nil {
		p.reportPanic(panicErr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w.markCrashed()
	p.logger.Debug("worker crashed", "worker_id", w.id, "panicked", panicErr != nil)

	switch p.State() {
	case types.StateRunning:
		// healWorkers refills the slot
	case types.StateShuttingDown:
		for i, candidate := range p.workers {
			if candidate == w {
				p.workers[i] = p.spawnLocked()
				break
			}
		}
	default:
		p.removeWorkerLocked(w)
	}
}

func (p *FixedThreadPool) heal(ticker *quartz.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-p.healStop:
			return
		case <-ticker.C:
			p.healWorkers()
		}
	}
}

// healWorkers replaces every dead worker slot and returns how many were replaced
func (p *FixedThreadPool) healWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Running() {
		return 0
	}

	replaced := 0
	for i, w := range p.workers {
		if !w.dead() {
			continue
		}
		p.workers[i] = p.spawnLocked()
		p.logger.Debug("worker replaced", "dead_worker_id", w.id, "worker_id", p.workers[i].id)
		replaced++
	}
	return replaced
}

func (p *FixedThreadPool) stopHealing() {
	p.healOnce.Do(func() { close(p.healStop) })
}
