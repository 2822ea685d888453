package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursetree/internal/tree"
)

func editName(name string) request {
	return request{mutation: tree.EditTrack{Name: name}, done: make(chan Result, 1)}
}

func nameOf(t *testing.T, r request) string {
	t.Helper()
	m, ok := r.mutation.(tree.EditTrack)
	require.True(t, ok)
	return m.Name
}

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue(0)

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, q.Enqueue(editName(name)))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, nameOf(t, got))
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "queue should be empty")
}

func TestRequestQueue_SignalCoalesces(t *testing.T) {
	q := newRequestQueue(0)
	require.NoError(t, q.Enqueue(editName("A")))
	require.NoError(t, q.Enqueue(editName("B")))

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("second signal should have been coalesced")
	default:
	}
	assert.Equal(t, 2, q.Len())
}

func TestRequestQueue_Limit(t *testing.T) {
	q := newRequestQueue(2)
	require.NoError(t, q.Enqueue(editName("A")))
	require.NoError(t, q.Enqueue(editName("B")))
	assert.ErrorIs(t, q.Enqueue(editName("C")), ErrQueueFull)

	_, ok := q.TryDequeue()
	require.True(t, ok)
	assert.NoError(t, q.Enqueue(editName("C")))
}

func TestRequestQueue_Close(t *testing.T) {
	q := newRequestQueue(0)
	require.NoError(t, q.Enqueue(editName("A")))

	q.Close()
	q.Close() // idempotent

	assert.ErrorIs(t, q.Enqueue(editName("B")), ErrClosed)
	assert.False(t, q.Finished(), "closed but not yet empty")

	<-q.Wait() // pending signal from the enqueue
	_, ok := <-q.Wait()
	assert.False(t, ok, "signal channel should be closed")

	_, ok = q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Finished())
}

func TestRequestQueue_Drain(t *testing.T) {
	q := newRequestQueue(0)
	require.NoError(t, q.Enqueue(editName("A")))
	require.NoError(t, q.Enqueue(editName("B")))

	pending := q.Drain()
	require.Len(t, pending, 2)
	assert.Equal(t, "A", nameOf(t, pending[0]))
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newRequestQueue(0)
	const producers, each = 8, 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				assert.NoError(t, q.Enqueue(editName("x")))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*each, q.Len())
}
