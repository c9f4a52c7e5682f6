// Package service starts and stops the long-running components in a fixed
// order.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Service is a long-running component.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) error
}

// Manager starts services in the order they were added and stops them in
// reverse.
type Manager struct {
	services []Service
	logger   *slog.Logger

	mu      sync.Mutex
	started []Service
}

// NewManager creates a manager for services, started in the given order.
func NewManager(logger *slog.Logger, services ...Service) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{services: services, logger: logger.With("component", "services")}
}

// Start starts every service. If one fails, the services already started
// are stopped again and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.started) > 0 {
		return errors.New("services already started")
	}

	for _, s := range m.services {
		if err := s.Start(ctx); err != nil {
			m.logger.Error("service failed to start", "service", s.Name(), "error", err)
			stopErr := m.stopLocked(context.WithoutCancel(ctx))
			return errors.Join(fmt.Errorf("start %s: %w", s.Name(), err), stopErr)
		}
		m.started = append(m.started, s)
		m.logger.Info("service started", "service", s.Name())
	}
	return nil
}

// Stop stops the started services in reverse order. Every service gets its
// Stop call even when an earlier one fails.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		s := m.started[i]
		if err := s.Stop(ctx); err != nil {
			m.logger.Error("service failed to stop", "service", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", s.Name(), err))
			continue
		}
		m.logger.Info("service stopped", "service", s.Name())
	}
	m.started = nil
	return errors.Join(errs...)
}

// Health checks every service, keyed by name. A nil value means healthy.
func (m *Manager) Health(ctx context.Context) map[string]error {
	out := make(map[string]error, len(m.services))
	for _, s := range m.services {
		out[s.Name()] = s.Health(ctx)
	}
	return out
}

// Names returns the service names in start order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.services))
	for i, s := range m.services {
		names[i] = s.Name()
	}
	return names
}
