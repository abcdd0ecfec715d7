package job

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Pop once the queue is closed and drained.
var ErrQueueClosed = errors.New("job queue closed")

// Queue is an unbounded FIFO. Push is safe from any number of goroutines and
// never blocks; Pop is meant for a single consumer.
type Queue struct {
	mu     sync.Mutex
	items  []Job
	closed bool
	// ready holds at most one wakeup token for a waiting consumer.
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends j. Pushes after Close are dropped and reported as false.
func (q *Queue) Push(j Job) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, j)
	q.mu.Unlock()
	q.wake()
	return true
}

// Pop blocks until a Job is available, ctx is done or the queue is closed.
func (q *Queue) Pop(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			j := q.items[0]
			q.items[0] = Job{}
			q.items = q.items[1:]
			if len(q.items) > 0 {
				// leave a token for the next Pop
				q.wake()
			}
			q.mu.Unlock()
			return j, nil
		}
		if q.closed {
			q.mu.Unlock()
			return Job{}, ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len reports the number of queued jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further pushes and wakes the consumer.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *Queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
