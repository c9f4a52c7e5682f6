package workqueue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_NeverExceedsConcurrency(t *testing.T) {
	for _, c := range []int{1, 2, 5} {
		var current, peak atomic.Int64
		var done sync.WaitGroup
		proc := ProcessorFunc[int](func(ctx context.Context, _ int) error {
			defer done.Done()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return nil
		})

		q := New[int]("test", Config{MaxConcurrent: c, Backlog: 50}, proc, testLogger())
		h := q.Start(context.Background())
		for i := range 30 {
			done.Add(1)
			require.NoError(t, q.Submit(i))
		}
		done.Wait()
		h.Stop()

		assert.LessOrEqual(t, peak.Load(), int64(c), "concurrency %d", c)
		assert.Equal(t, int64(30), q.Stats().Processed)
	}
}

func TestQueue_SubmitFailsFastWhenFull(t *testing.T) {
	q := New[int]("test", Config{MaxConcurrent: 1, Backlog: 3}, ProcessorFunc[int](func(context.Context, int) error {
		return nil
	}), testLogger())

	// Not started: nothing drains the backlog.
	for i := range 3 {
		require.NoError(t, q.Submit(i))
	}

	done := make(chan error, 1)
	go func() { done <- q.Submit(99) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full backlog")
	}

	stats := q.Stats()
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, int64(1), stats.Rejected)
}

func TestQueue_FailuresAreIsolated(t *testing.T) {
	var ok atomic.Int64
	proc := ProcessorFunc[int](func(_ context.Context, n int) error {
		switch n {
		case 1:
			return errors.New("boom")
		case 2:
			panic("kaboom")
		}
		ok.Add(1)
		return nil
	})

	q := New[int]("test", Config{MaxConcurrent: 2, Backlog: 10}, proc, testLogger())
	h := q.Start(context.Background())
	for i := range 5 {
		require.NoError(t, q.Submit(i))
	}
	assert.Zero(t, h.Drain(context.Background()))

	stats := q.Stats()
	assert.Equal(t, int64(3), ok.Load())
	assert.Equal(t, int64(3), stats.Processed)
	assert.Equal(t, int64(2), stats.Failed)
}

func TestQueue_DispatchSpacing(t *testing.T) {
	const delay = 40 * time.Millisecond
	var mu sync.Mutex
	var starts []time.Time
	proc := ProcessorFunc[int](func(context.Context, int) error {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return nil
	})

	q := New[int]("test", Config{MaxConcurrent: 4, Backlog: 10, Delay: delay}, proc, testLogger())
	for i := range 4 {
		require.NoError(t, q.Submit(i))
	}
	h := q.Start(context.Background())
	h.Drain(context.Background())

	require.Len(t, starts, 4)
	for i := 1; i < len(starts); i++ {
		// Allow a little scheduler slack.
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), delay-5*time.Millisecond)
	}
}

func TestQueue_FIFO(t *testing.T) {
	var mu sync.Mutex
	var order []int
	proc := ProcessorFunc[int](func(_ context.Context, n int) error {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
		return nil
	})

	q := New[int]("test", Config{MaxConcurrent: 1, Backlog: 10}, proc, testLogger())
	for i := range 5 {
		require.NoError(t, q.Submit(i))
	}
	q.Start(context.Background()).Drain(context.Background())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestHandle_StopDropsPending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	proc := ProcessorFunc[int](func(ctx context.Context, _ int) error {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})

	q := New[int]("test", Config{MaxConcurrent: 1, Backlog: 10}, proc, testLogger())
	h := q.Start(context.Background())
	for i := range 4 {
		require.NoError(t, q.Submit(i))
	}
	<-started

	dropped := h.Stop()
	assert.Equal(t, 3, dropped)
	assert.Equal(t, dropped, h.Stop(), "Stop is idempotent")
	assert.ErrorIs(t, q.Submit(5), ErrQueueClosed)
	close(release)
}
