package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/metadata"
)

const (
	housekeepingSchedule = "@daily"
	eventRetention       = 90 * 24 * time.Hour
)

// housekeeper prunes expired metadata cache rows and old events on a schedule.
type housekeeper struct {
	cache    *metadata.Cache
	eventLog *events.EventLog
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func newHousekeeper(cache *metadata.Cache, eventLog *events.EventLog, logger *slog.Logger) *housekeeper {
	return &housekeeper{
		cache:    cache,
		eventLog: eventLog,
		logger:   logger.With("component", "housekeeping"),
	}
}

func (h *housekeeper) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cron != nil {
		return nil
	}

	runCtx := context.WithoutCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(housekeepingSchedule, func() { h.run(runCtx) }); err != nil {
		return err
	}
	c.Start()
	h.cron = c
	return nil
}

func (h *housekeeper) Stop(ctx context.Context) error {
	h.mu.Lock()
	c := h.cron
	h.cron = nil
	h.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *housekeeper) run(ctx context.Context) {
	if n, err := h.cache.Prune(ctx); err != nil {
		h.logger.Warn("metadata cache prune failed", "error", err)
	} else if n > 0 {
		h.logger.Info("pruned metadata cache", "rows", n)
	}

	if n, err := h.eventLog.Prune(eventRetention); err != nil {
		h.logger.Warn("event log prune failed", "error", err)
	} else if n > 0 {
		h.logger.Info("pruned events", "rows", n)
	}
}
