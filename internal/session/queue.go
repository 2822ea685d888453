package session

import (
	"errors"
	"sync"

	"github.com/roach88/coursetree/internal/tree"
)

// Result is the outcome of one submitted mutation.
type Result struct {
	Snapshot tree.Snapshot
	Err      error
}

// request pairs a mutation with the channel its Result is delivered on.
type request struct {
	mutation tree.Mutation
	done     chan Result // buffered, size 1
}

var (
	// ErrClosed is returned by Submit once the session has stopped.
	ErrClosed = errors.New("session: closed")

	// ErrQueueFull is returned by Submit when the queue depth limit is reached.
	ErrQueueFull = errors.New("session: mutation queue full")
)

// requestQueue is a thread-safe FIFO of pending mutations.
//
// UI handlers enqueue from any goroutine; only the session's Run loop
// dequeues. Waiting goes through a signal channel so Run can select on it
// together with ctx.Done().
type requestQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	limit    int           // 0 means unbounded
	signal   chan struct{} // buffered, size 1
}

func newRequestQueue(limit int) *requestQueue {
	return &requestQueue{
		requests: make([]request, 0, 16),
		limit:    limit,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a request to the back of the queue.
func (q *requestQueue) Enqueue(r request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.limit > 0 && len(q.requests) >= q.limit {
		return ErrQueueFull
	}

	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return nil
}

// TryDequeue removes the front request without blocking.
func (q *requestQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}

	r := q.requests[0]
	// Release the mutation for GC; the backing array outlives the slot.
	q.requests[0] = request{}

	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that fires when requests may be available. It is
// closed once the queue is closed.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending requests.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close stops further enqueues and wakes any waiter.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Finished reports whether the queue is closed and empty.
func (q *requestQueue) Finished() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.requests) == 0
}

// Drain empties the queue and returns what was pending.
func (q *requestQueue) Drain() []request {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.requests
	q.requests = nil
	return pending
}
