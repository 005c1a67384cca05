package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/repository"
)

var errNoTarget = errors.New("no storage configured")

// Monitor periodically pings the durable byte store backing snapshots.
type Monitor struct {
	backend string
	target  repository.Pinger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(backend string, target repository.Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		backend:  backend,
		target:   target,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs one health check synchronously.
func (m *Monitor) Refresh() {
	status := Status{
		Backend:   m.backend,
		LastCheck: time.Now(),
	}
	if err := m.check(); err != nil {
		status.Error = err.Error()
	} else {
		status.Storage = true
	}

	m.mu.Lock()
	wasOnline := m.status.Storage
	m.status = status
	m.mu.Unlock()

	if wasOnline && !status.Storage {
		m.logger.Warn("snapshot storage went offline", zap.String("backend", m.backend), zap.String("error", status.Error))
	}
}

func (m *Monitor) check() error {
	if m.target == nil {
		return errNoTarget
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.target.Ping(ctx)
}
