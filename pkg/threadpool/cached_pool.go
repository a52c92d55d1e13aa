package threadpool

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// CachedThreadPoolConfig contains configuration for cached thread pool
type CachedThreadPoolConfig struct {
	// IdleTimeout is how long a worker may stay idle before it is reclaimed
	IdleTimeout time.Duration

	// SweepInterval is how often idle and dead workers are reclaimed
	SweepInterval time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger receives lifecycle events at debug level (optional)
	Logger *slog.Logger

	// PanicHandler observes task panics (optional)
	PanicHandler types.PanicHandler
}

// DefaultCachedThreadPoolConfig returns default configuration
func DefaultCachedThreadPoolConfig() *CachedThreadPoolConfig {
	return &CachedThreadPoolConfig{
		IdleTimeout:   60 * time.Second,
		SweepInterval: 60 * time.Second,
		Clock:         types.NewRealClock(),
	}
}

// CachedThreadPool grows a worker per post while every worker is busy and
// reclaims workers that stay idle past IdleTimeout. It starts empty.
type CachedThreadPool struct {
	*poolCore
	config *CachedThreadPoolConfig

	// guarded by mu
	busy      int
	sweeping  bool
	sweepStop chan struct{}
}

var _ types.ThreadPool = (*CachedThreadPool)(nil)

// NewCachedThreadPool creates a cached pool with default configuration
func NewCachedThreadPool() *CachedThreadPool {
	pool, err := NewCachedThreadPoolWithConfig(nil)
	if err != nil {
		// the default configuration is always valid
		panic(err)
	}
	return pool
}

// NewCachedThreadPoolWithConfig creates a cached pool from config
func NewCachedThreadPoolWithConfig(config *CachedThreadPoolConfig) (*CachedThreadPool, error) {
	if config == nil {
		config = DefaultCachedThreadPoolConfig()
	}

	// Validate parameters
	if config.IdleTimeout <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive, got %v: %w",
			config.IdleTimeout, types.ErrInvalidConfig)
	}
	if config.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %v: %w",
			config.SweepInterval, types.ErrInvalidConfig)
	}

	return &CachedThreadPool{
		poolCore: newPoolCore("cached", config.Clock, config.Logger, config.PanicHandler),
		config:   config,
	}, nil
}

// Post enqueues fn with args, adding a worker first when none is free.
// It returns false if the pool is not running.
func (p *CachedThreadPool) Post(fn types.TaskFunc, args ...any) (bool, error) {
	if fn == nil {
		return false, types.ErrNilTask
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.Running() {
		return false, nil
	}

	if !p.sweeping && len(p.workers) == 0 {
		p.startSweepLocked()
	}
	if p.busy >= p.liveWorkersLocked() {
		p.spawnLocked()
	}

	return p.enqueueLocked(fn, args), nil
}

// Shutdown stops accepting tasks; workers exit after the queue drains
func (p *CachedThreadPool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.beginShutdownLocked() && p.Terminated() {
		p.stopSweepLocked()
	}
}

// Kill stops the pool at once, discarding queued tasks
func (p *CachedThreadPool) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked()
	p.stopSweepLocked()
}

// BusyWorkers returns the number of workers running or about to run a task.
// After Kill it still counts abandoned tasks until they return.
func (p *CachedThreadPool) BusyWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// new workers count as busy until they first reach the queue
func (p *CachedThreadPool) spawnLocked() *worker {
	w := p.newWorkerLocked()
	p.setBusyLocked(w, true)
	p.workers = append(p.workers, w)
	p.goTracked(func() { p.work(w) })
	p.logger.Debug("worker started", "worker_id", w.id, "workers", len(p.workers))
	return w
}

func (p *CachedThreadPool) setBusyLocked(w *worker, busy bool) {
	if w.busy == busy {
		return
	}
	w.busy = busy
	if busy {
		p.busy++
	} else {
		p.busy--
	}
}

func (p *CachedThreadPool) setBusy(w *worker, busy bool) {
	p.mu.Lock()
	p.setBusyLocked(w, busy)
	p.mu.Unlock()
}

func (p *CachedThreadPool) work(w *worker) {
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

func (p *CachedThreadPool) serve(w *worker) {
	for {
		p.setBusy(w, false)
		w.markIdle()

		item, ok := p.queue.Pop(w.quit)
		if !ok {
			// reclaimed or killed; the registry no longer holds w
			return
		}
		if item.isStop() {
			w.setState(types.WorkerStateStopping)
			p.retire(w)
			p.stopSweepIfTerminated()
			return
		}

		p.setBusy(w, true)
		w.setState(types.WorkerStateWorking)
		if panicErr := w.execute(item.task); panicErr != nil {
			p.crash(w, panicErr)
			return
		}
	}
}

// crash releases the busy slot of a worker lost to its task, by panic or by
// runtime.Goexit (panicErr is nil). While running no replacement is started;
// the next post grows the pool if demand needs it. While shutting down a
// replacement takes over the queue and the stop sentinel counted for w.
func (p *CachedThreadPool) crash(w *worker, panicErr *types.TaskPanicError) {
	if panicErr != nil {
		p.reportPanic(panicErr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w.markCrashed()
	p.setBusyLocked(w, false)
	p.logger.Debug("worker crashed", "worker_id", w.id, "panicked", panicErr != nil)

	switch p.State() {
	case types.StateRunning:
		// the next sweep drops w
	case types.StateShuttingDown:
		p.removeWorkerLocked(w)
		p.spawnLocked()
	default:
		p.removeWorkerLocked(w)
	}
}

func (p *CachedThreadPool) startSweepLocked() {
	p.sweeping = true
	p.sweepStop = make(chan struct{})

	// created here so a mock clock sees the ticker as soon as Post returns
	ticker := p.clock.NewTicker(p.config.SweepInterval)
	stop := p.sweepStop
	p.goTracked(func() { p.sweep(ticker, stop) })
	p.logger.Debug("idle sweep started", "interval", p.config.SweepInterval)
}

func (p *CachedThreadPool) stopSweepLocked() {
	if !p.sweeping {
		return
	}
	p.sweeping = false
	close(p.sweepStop)
}

// stopSweepIfTerminated ends the sweep once the last worker has retired
func (p *CachedThreadPool) stopSweepIfTerminated() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Terminated() {
		p.stopSweepLocked()
	}
}

func (p *CachedThreadPool) sweep(ticker *quartz.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !p.reclaim(stop) {
				return
			}
		}
	}
}

// reclaim removes dead workers and workers idle longer than IdleTimeout.
// It returns false once the registry is empty and the sweep has stopped itself.
func (p *CachedThreadPool) reclaim(stop <-chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	// a newer sweep may have replaced this one while it waited for the lock
	select {
	case <-stop:
		return false
	default:
	}

	now := p.clock.Now()
	kept := p.workers[:0]
	reclaimed := 0
	for _, w := range p.workers {
		switch {
		case w.dead():
			reclaimed++
		case w.IdleFor(now) > p.config.IdleTimeout:
			w.stop()
			reclaimed++
		default:
			kept = append(kept, w)
		}
	}
	clear(p.workers[len(kept):])
	p.workers = kept

	if reclaimed > 0 {
		p.logger.Debug("workers reclaimed", "reclaimed", reclaimed, "workers", len(p.workers))
	}
	p.terminateIfDrainedLocked()

	if len(p.workers) == 0 {
		p.stopSweepLocked()
		p.logger.Debug("idle sweep stopped")
		return false
	}
	return true
}
