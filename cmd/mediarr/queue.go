package main

import (
	"context"

	"github.com/vmunix/mediarr/internal/workqueue"
)

// newProcessQueue serializes torrent post-processing: one torrent at a time.
func newProcessQueue(a *app) *workqueue.Queue[int64] {
	return workqueue.New[int64]("torrent-process", workqueue.Config{MaxConcurrent: 1, Backlog: 100},
		workqueue.ProcessorFunc[int64](func(ctx context.Context, id int64) error {
			_, err := a.processor.Process(ctx, id)
			return err
		}), a.logger)
}
