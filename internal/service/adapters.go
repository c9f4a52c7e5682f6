package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmunix/mediarr/internal/torrent"
	"github.com/vmunix/mediarr/internal/workqueue"
)

// ErrNotRunning is reported by Health for a service that is not started.
var ErrNotRunning = errors.New("not running")

// Lifecycle is anything with Start and Stop.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type named struct {
	name string
	l    Lifecycle

	mu      sync.Mutex
	running bool
}

// Named turns a Lifecycle into a Service. Health is delegated when the
// component has its own check.
func Named(name string, l Lifecycle) Service {
	return &named{name: name, l: l}
}

func (n *named) Name() string { return n.name }

func (n *named) Start(ctx context.Context) error {
	if err := n.l.Start(ctx); err != nil {
		return err
	}
	n.mu.Lock()
	n.running = true
	n.mu.Unlock()
	return nil
}

func (n *named) Stop(ctx context.Context) error {
	n.mu.Lock()
	n.running = false
	n.mu.Unlock()
	return n.l.Stop(ctx)
}

func (n *named) Health(ctx context.Context) error {
	if h, ok := n.l.(healthChecker); ok {
		return h.Health(ctx)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return ErrNotRunning
	}
	return nil
}

// QueueService runs a work queue. Stop drains the backlog until the stop
// context ends; whatever is left is dropped.
type QueueService[J any] struct {
	queue *workqueue.Queue[J]

	mu     sync.Mutex
	handle *workqueue.Handle
}

// Queue wraps q as a Service.
func Queue[J any](q *workqueue.Queue[J]) *QueueService[J] {
	return &QueueService[J]{queue: q}
}

func (s *QueueService[J]) Name() string { return "queue:" + s.queue.Name() }

func (s *QueueService[J]) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		s.handle = s.queue.Start(context.WithoutCancel(ctx))
	}
	return nil
}

func (s *QueueService[J]) Stop(ctx context.Context) error {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	if dropped := h.Drain(ctx); dropped > 0 {
		return fmt.Errorf("%s: dropped %d pending jobs", s.queue.Name(), dropped)
	}
	return nil
}

func (s *QueueService[J]) Health(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return ErrNotRunning
	}
	select {
	case <-s.handle.Done():
		return errors.New("dispatcher exited")
	default:
		return nil
	}
}

// SyncerService runs the torrent sync loop.
type SyncerService struct {
	syncer *torrent.Syncer

	mu     sync.Mutex
	handle *torrent.Handle
}

// Syncer wraps s as a Service.
func Syncer(s *torrent.Syncer) *SyncerService {
	return &SyncerService{syncer: s}
}

func (s *SyncerService) Name() string { return "torrent-sync" }

func (s *SyncerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		s.handle = s.syncer.Start(context.WithoutCancel(ctx))
	}
	return nil
}

func (s *SyncerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	go h.Stop()
	select {
	case <-h.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncerService) Health(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return ErrNotRunning
	}
	return nil
}
