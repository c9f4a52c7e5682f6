package torrent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/mediarr/internal/events"
)

// DefaultSyncInterval is how often the client is polled.
const DefaultSyncInterval = 30 * time.Second

// Enqueuer accepts completed torrents for post-processing.
type Enqueuer interface {
	Submit(torrentID int64) error
}

// Syncer mirrors the client's torrents into the store. A poller goroutine
// reads the client and hands snapshots over a channel to a single writer
// goroutine, which is the only place torrent rows are written during sync.
type Syncer struct {
	torrents *Store
	client   Client
	bus      *events.Bus
	queue    Enqueuer
	interval time.Duration
	userID   int64
	logger   *slog.Logger
}

// NewSyncer creates a syncer. queue and bus may be nil.
func NewSyncer(torrents *Store, client Client, bus *events.Bus, queue Enqueuer, interval time.Duration, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Syncer{
		torrents: torrents,
		client:   client,
		bus:      bus,
		queue:    queue,
		interval: interval,
		userID:   1,
		logger:   logger.With("component", "torrent-syncer"),
	}
}

// Handle controls a started syncer.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels polling and waits for both goroutines to exit. Safe to call
// more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed once the syncer has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Start polls immediately and then every interval until stopped.
func (s *Syncer) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	updates := make(chan []ClientTorrent)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(updates)
		s.poll(ctx, updates)
	}()
	go func() {
		defer wg.Done()
		for batch := range updates {
			s.apply(ctx, batch)
		}
	}()
	go func() {
		wg.Wait()
		close(h.done)
	}()

	s.logger.Info("torrent sync started", "interval", s.interval)
	return h
}

func (s *Syncer) poll(ctx context.Context, out chan<- []ClientTorrent) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		batch, err := s.client.List(ctx)
		switch {
		case err == nil:
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		case errors.Is(err, context.Canceled):
			return
		default:
			s.logger.Warn("torrent client poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce polls the client and applies the result on the caller's goroutine.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	batch, err := s.client.List(ctx)
	if err != nil {
		return err
	}
	s.apply(ctx, batch)
	return nil
}

func (s *Syncer) apply(ctx context.Context, batch []ClientTorrent) {
	for _, ct := range batch {
		if err := s.applyOne(ctx, ct); err != nil {
			s.logger.Warn("failed to sync torrent", "hash", ct.Hash, "error", err)
		}
	}
}

func (s *Syncer) applyOne(ctx context.Context, ct ClientTorrent) error {
	t, err := s.torrents.GetByHash(ct.Hash)
	switch {
	case errors.Is(err, ErrNotFound):
		t = &Torrent{
			UserID:    s.userID,
			InfoHash:  ct.Hash,
			Name:      ct.Name,
			SavePath:  ct.SavePath,
			State:     ct.State,
			Progress:  ct.Progress,
			SizeBytes: ct.Size,
		}
		if err := s.torrents.Add(t); err != nil {
			return err
		}
		s.logger.Info("tracking torrent", "torrent_id", t.ID, "name", t.Name)
	case err != nil:
		return err
	default:
		if t.State == ct.State && t.Progress == ct.Progress && t.SavePath == ct.SavePath && t.SizeBytes == ct.Size {
			return nil
		}
		wasComplete := t.IsComplete()
		if err := s.torrents.UpdateProgress(t.ID, ct.State, ct.Progress, ct.Size, ct.SavePath); err != nil {
			return err
		}
		t.State, t.Progress, t.SizeBytes, t.SavePath = ct.State, ct.Progress, ct.Size, ct.SavePath
		if wasComplete {
			s.publish(ctx, t)
			return nil
		}
	}

	s.publish(ctx, t)
	if t.IsComplete() && (t.PostProcessStatus == StatusNone || t.PostProcessStatus == StatusPending) {
		s.enqueue(t)
	}
	return nil
}

func (s *Syncer) publish(ctx context.Context, t *Torrent) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, &events.TorrentProgress{
		BaseEvent: events.NewBaseEvent(events.EventTorrentProgress, events.EntityTorrent, t.ID),
		TorrentID: t.ID,
		InfoHash:  t.InfoHash,
		Name:      t.Name,
		State:     t.State,
		Progress:  t.Progress,
	})
	if err != nil {
		s.logger.Warn("failed to publish torrent progress", "torrent_id", t.ID, "error", err)
	}
}

func (s *Syncer) enqueue(t *Torrent) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Submit(t.ID); err != nil {
		// The sweep picks it up later.
		s.logger.Warn("torrent not queued for processing", "torrent_id", t.ID, "error", err)
		return
	}
	s.logger.Info("torrent queued for processing", "torrent_id", t.ID, "name", t.Name)
}
