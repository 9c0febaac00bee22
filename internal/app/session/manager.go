package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelfront/internal/domain/auth"
	"hotelfront/internal/domain/filters"
)

// Metrics counts session lifecycle events. Optional.
type Metrics interface {
	SessionOpened()
	SessionClosed()
}

type Manager struct {
	fetcher Fetcher
	cfg     Config
	idleTTL time.Duration
	logger  *slog.Logger
	metrics Metrics

	// overridable in tests
	now   func() time.Time
	newID func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

func WithMetrics(m Metrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

func WithClock(now func() time.Time) ManagerOption {
	return func(mgr *Manager) { mgr.now = now }
}

func NewManager(fetcher Fetcher, cfg Config, idleTTL time.Duration, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	m := &Manager{
		fetcher:  fetcher,
		cfg:      cfg.withDefaults(),
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open mounts a session for the caller from a raw listing query string.
func (m *Manager) Open(ctx context.Context, rawQuery string) (*Session, error) {
	principal, err := auth.RequireRole(ctx, "")
	if err != nil {
		return nil, err
	}
	s := newSession(m.newID(), principal, filters.ParseQuery(rawQuery), m.fetcher, m.cfg, m.logger, m.now())
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.SessionOpened()
	}
	m.logger.Debug("browse session opened", "session_id", s.id, "user_id", principal.UserID)
	return s, nil
}

// Get returns the caller's session. Sessions of other users are reported as missing.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	principal, err := auth.RequireRole(ctx, "")
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.owner != principal.UserID {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

func (m *Manager) Close(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	m.remove(s)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)
	var idle []*Session
	m.mu.RLock()
	for _, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	m.mu.RUnlock()
	for _, s := range idle {
		m.remove(s)
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx ends, then closes the rest.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return ctx.Err()
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired idle browse sessions", "count", n)
			}
		}
	}
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.id]
	delete(m.sessions, s.id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.Close()
	if m.metrics != nil {
		m.metrics.SessionClosed()
	}
}

func (m *Manager) closeAll() {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()
	for _, s := range all {
		m.remove(s)
	}
}
