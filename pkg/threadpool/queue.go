package threadpool

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// task is a function plus the arguments it was posted with
type task struct {
	fn   types.TaskFunc
	args []any
}

// queueItem is either a task or a stop sentinel
type queueItem struct {
	task *task
}

func (it queueItem) isStop() bool {
	return it.task == nil
}

var stopSentinel = queueItem{}

// taskQueue is an unbounded multi-producer, multi-consumer FIFO.
// Push never blocks. Pop blocks until an item arrives, the queue is
// closed or the caller's quit channel is closed.
type taskQueue struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool

	// ready holds at most one wake-up token; a consumer that takes an item
	// passes the token on while items remain
	ready chan struct{}
	done  chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		items: queue.New(),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push appends an item, returning false if the queue is closed
func (q *taskQueue) Push(it queueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items.Add(it)
	q.signal()
	return true
}

// Pop removes the oldest item. ok is false when the queue was closed or quit fired.
func (q *taskQueue) Pop(quit <-chan struct{}) (it queueItem, ok bool) {
	for {
		select {
		case <-quit:
			q.mu.Lock()
			if q.items.Length() > 0 {
				q.signal()
			}
			q.mu.Unlock()
			return queueItem{}, false
		default:
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return queueItem{}, false
		}
		if q.items.Length() > 0 {
			it = q.items.Remove().(queueItem)
			if q.items.Length() > 0 {
				q.signal()
			}
			q.mu.Unlock()
			return it, true
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.done:
		case <-quit:
		}
	}
}

// Len returns the number of queued items, sentinels included
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Close discards every queued item and releases blocked consumers.
// It returns the number of tasks discarded.
func (q *taskQueue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}
	q.closed = true

	discarded := 0
	for q.items.Length() > 0 {
		if !q.items.Remove().(queueItem).isStop() {
			discarded++
		}
	}
	close(q.done)
	return discarded
}

// signal must be called with mu held
func (q *taskQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
