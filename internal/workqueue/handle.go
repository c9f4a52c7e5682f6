package workqueue

import (
	"context"
	"sync"
)

// Handle controls a started queue.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	close  func()
	left   func() int

	once    sync.Once
	dropped int
}

// Stop cancels dispatch, waits for in-flight jobs to return and reports how
// many pending jobs were dropped. Safe to call more than once.
func (h *Handle) Stop() int {
	h.once.Do(func() {
		h.close()
		h.cancel()
		<-h.done
		h.dropped = h.left()
	})
	return h.dropped
}

// Drain stops accepting jobs and waits until the backlog is processed. If
// ctx ends first the queue is stopped and the remaining jobs dropped.
func (h *Handle) Drain(ctx context.Context) int {
	h.close()
	select {
	case <-h.done:
	case <-ctx.Done():
	}
	return h.Stop()
}

// Done is closed once the dispatcher and all in-flight jobs have finished.
func (h *Handle) Done() <-chan struct{} { return h.done }
