package torrent

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep every 15 minutes.
const DefaultSweepSchedule = "@every 15m"

// Sweeper periodically re-runs post-processing for completed torrents that
// were never processed or ended up unmatched.
type Sweeper struct {
	torrents *Store
	proc     *Processor
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running sync.Mutex
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Considered int
	Processed  int
	Matched    int
	Failed     int
}

// NewSweeper creates a sweeper. An empty schedule uses DefaultSweepSchedule.
func NewSweeper(torrents *Store, proc *Processor, schedule string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{
		torrents: torrents,
		proc:     proc,
		schedule: schedule,
		logger:   logger.With("component", "torrent-sweeper"),
	}
}

// Sweep processes every eligible torrent once. A failure on one torrent is
// logged and does not stop the others. Overlapping sweeps are skipped.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	res := &SweepResult{}
	if !s.running.TryLock() {
		s.logger.Debug("sweep already running")
		return res, nil
	}
	defer s.running.Unlock()

	list, err := s.torrents.List(Filter{
		Statuses: []Status{StatusNone, StatusPending, StatusUnmatched},
		Complete: true,
	})
	if err != nil {
		return nil, err
	}

	for _, t := range list {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !t.PostProcessStatus.NeedsSweep() {
			continue
		}
		res.Considered++
		out, err := s.proc.Process(ctx, t.ID)
		if errors.Is(err, ErrInvalidTransition) {
			// Picked up by someone else since the listing.
			continue
		}
		if err != nil {
			res.Failed++
			s.logger.Warn("sweep failed for torrent", "torrent_id", t.ID, "error", err)
			continue
		}
		res.Processed++
		if out.Matched {
			res.Matched++
		}
	}

	if res.Considered > 0 {
		s.logger.Info("sweep finished",
			"considered", res.Considered,
			"processed", res.Processed,
			"matched", res.Matched,
			"failed", res.Failed)
	}
	return res, nil
}

// Start schedules the sweep. Stop must be called to release the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Info("sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to return.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
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
