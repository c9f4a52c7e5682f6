package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediarr/internal/events"
)

// DefaultShutdownTimeout bounds how long Run waits for services to stop.
const DefaultShutdownTimeout = 30 * time.Second

// Runner runs a Manager until its context ends.
type Runner struct {
	manager *Manager
	bus     *events.Bus
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a runner. bus may be nil; when set, events are logged
// at debug level while running.
func NewRunner(manager *Manager, bus *events.Bus, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		manager: manager,
		bus:     bus,
		timeout: DefaultShutdownTimeout,
		logger:  logger.With("component", "runner"),
	}
}

// WithShutdownTimeout sets how long Run waits for services to stop.
func (r *Runner) WithShutdownTimeout(d time.Duration) *Runner {
	r.timeout = d
	return r
}

// Run starts all services and blocks until ctx is cancelled, then stops
// them. It returns nil on a clean shutdown.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.manager.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if r.bus != nil {
		sub := r.bus.SubscribeAll(100)
		g.Go(func() error {
			defer r.bus.Unsubscribe(sub)
			for {
				select {
				case <-gctx.Done():
					return nil
				case e, ok := <-sub:
					if !ok {
						return nil
					}
					r.logger.Debug("event",
						"type", e.EventType(),
						"entity_type", e.EntityType(),
						"entity_id", e.EntityID())
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down")
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), r.timeout)
		defer cancel()
		return r.manager.Stop(stopCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
