package threadpool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jzx17/gothreadpool/pkg/types"
)

func taskItem(fn types.TaskFunc, args ...any) queueItem {
	return queueItem{task: &task{fn: fn, args: args}}
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()

	for i := 0; i < 5; i++ {
		require.True(t, q.Push(taskItem(func(...any) {}, i)))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		item, ok := q.Pop(nil)
		require.True(t, ok)
		require.False(t, item.isStop())
		assert.Equal(t, i, item.task.args[0])
	}
	assert.Equal(t, 0, q.Len())
}

func TestTaskQueue_PopBlocksUntilPush(t *testing.T) {
	q := newTaskQueue()
	got := make(chan queueItem, 1)

	go func() {
		item, ok := q.Pop(nil)
		if ok {
			got <- item
		}
	}()

	select {
	case <-got:
		t.Fatal("pop returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push(stopSentinel)

	select {
	case item := <-got:
		assert.True(t, item.isStop())
	case <-time.After(5 * time.Second):
		t.Fatal("pop did not observe push")
	}
}

func TestTaskQueue_QuitReleasesPop(t *testing.T) {
	q := newTaskQueue()
	quit := make(chan struct{})
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop(quit)
		done <- ok
	}()

	close(quit)

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("quit did not release pop")
	}
}

func TestTaskQueue_QuitPassesWakeupOn(t *testing.T) {
	q := newTaskQueue()
	quit := make(chan struct{})
	close(quit)

	q.Push(stopSentinel)

	_, ok := q.Pop(quit)
	assert.False(t, ok)

	// the item is still there for a consumer that did not quit
	item, ok := q.Pop(nil)
	require.True(t, ok)
	assert.True(t, item.isStop())
}

func TestTaskQueue_Close(t *testing.T) {
	q := newTaskQueue()
	q.Push(taskItem(func(...any) {}))
	q.Push(taskItem(func(...any) {}))
	q.Push(stopSentinel)

	var wg sync.WaitGroup
	empty := newTaskQueue()
	released := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := empty.Pop(nil)
			released <- ok
		}()
	}

	assert.Equal(t, 2, q.Close(), "only real tasks count as discarded")
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Push(taskItem(func(...any) {})))
	assert.Equal(t, 0, q.Close())

	_, ok := q.Pop(nil)
	assert.False(t, ok)

	empty.Close()
	wg.Wait()
	close(released)
	for ok := range released {
		assert.False(t, ok)
	}
}

func TestTaskQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := newTaskQueue()
	const producers, consumers, perProducer = 4, 4, 250

	var producerGroup errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		producerGroup.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Push(taskItem(func(...any) {}, p*perProducer+i))
			}
			return nil
		})
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	var consumerGroup errgroup.Group
	for c := 0; c < consumers; c++ {
		consumerGroup.Go(func() error {
			for {
				item, ok := q.Pop(nil)
				if !ok || item.isStop() {
					return nil
				}
				mu.Lock()
				seen[item.task.args[0].(int)] = true
				mu.Unlock()
			}
		})
	}

	require.NoError(t, producerGroup.Wait())
	for c := 0; c < consumers; c++ {
		q.Push(stopSentinel)
	}
	require.NoError(t, consumerGroup.Wait())

	assert.Len(t, seen, producers*perProducer)
}
