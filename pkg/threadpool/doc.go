/*
Package threadpool provides fixed-size and cached thread pools built on a shared lifecycle.

# Overview

Both pools accept fire-and-forget tasks through Post, run them on worker
goroutines fed from one unbounded FIFO queue, and implement types.ThreadPool:
- Post never blocks and returns false once the pool stops running
- Shutdown drains every accepted task before workers exit
- Kill drops queued tasks and abandons running ones
- WaitForTermination blocks on an event.Event

# Core Components

## FixedThreadPool

Exactly Size workers, created by the constructor:
- Size must be in [1, 1024]
- A task panic ends the worker that ran it
- A healing sweep replaces dead workers every HealInterval
- A worker that dies during shutdown is replaced at once so the queue drains

## CachedThreadPool

Starts with no workers:
- Post adds a worker when every live worker is busy
- A sweep running every SweepInterval reclaims workers idle beyond IdleTimeout
- The sweep stops itself when no worker is left and restarts on the next Post
- A worker killed by a panic is not replaced until demand requires it,
  except during shutdown, where a replacement finishes the queue

# Lifecycle

	Running --Shutdown--> ShuttingDown --last worker exits--> Terminated
	   any  --Kill------> Shutdown

Kill from Terminated moves the pool to Shutdown, so Terminated reports false after any Kill.

# Error Handling

Panics inside tasks are recovered at the worker boundary and never reach the
submitter. An optional PanicHandler in the configuration can observe them.
A task that calls runtime.Goexit ends its worker the same way without
reaching the PanicHandler.

# Usage Examples

Basic usage:

	pool, err := threadpool.NewFixedThreadPool(4)
	if err != nil {
		log.Fatal(err)
	}

	pool.Post(func(args ...any) {
		fmt.Println("hello", args[0])
	}, "world")

	pool.Shutdown()
	pool.WaitForTermination(0)

Cached pool with a mock clock for tests:

	mock := quartz.NewMock(t)
	pool, _ := threadpool.NewCachedThreadPoolWithConfig(&threadpool.CachedThreadPoolConfig{
		IdleTimeout:   30 * time.Second,
		SweepInterval: 10 * time.Second,
		Clock:         mock,
	})
*/
package threadpool
