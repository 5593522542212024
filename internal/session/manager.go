// Package session manages planner sessions: each session owns an
// independent planner instance and a map bridge collecting its outputs.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/planner"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is one planner session.
type Session struct {
	ID        string
	Planner   *planner.Planner
	Bridge    *MapBridge
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeenAt time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeenAt = now
	s.mu.Unlock()
}

func (s *Session) lastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeenAt
}

// PlannerFactory builds a fresh planner wired to the given bridge.
type PlannerFactory func(bridge *MapBridge) *planner.Planner

// ManagerConfig holds configuration for the session manager.
type ManagerConfig struct {
	// Factory builds a planner per session.
	Factory PlannerFactory

	// Logger for manager operations.
	Logger zerolog.Logger

	// TTL is how long an idle session lives (default: 30 minutes).
	TTL time.Duration

	// SweepInterval is how often expired sessions are collected
	// (default: 5 minutes).
	SweepInterval time.Duration
}

// Manager is an in-memory session registry with lazy TTL eviction.
type Manager struct {
	factory       PlannerFactory
	logger        zerolog.Logger
	ttl           time.Duration
	sweepInterval time.Duration

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	sweepInterval := cfg.SweepInterval
	if sweepInterval == 0 {
		sweepInterval = 5 * time.Minute
	}
	return &Manager{
		factory:       cfg.Factory,
		logger:        cfg.Logger,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		sessions:      make(map[string]*Session),
		lastSweep:     time.Now(),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	now := time.Now()
	bridge := NewMapBridge()
	s := &Session{
		ID:         "sess_" + uuid.New().String(),
		Planner:    m.factory(bridge),
		Bridge:     bridge,
		CreatedAt:  now,
		lastSeenAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug().
		Str("session_id", s.ID).
		Int("session_count", count).
		Msg("session created")

	m.sweepIfNeeded()
	return s
}

// Get returns a live session and refreshes its idle deadline.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(time.Now())
	m.sweepIfNeeded()
	return s, nil
}

// Delete ends a session and releases its timers.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.Planner.Close()
	m.logger.Debug().Str("session_id", id).Msg("session deleted")
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweepIfNeeded evicts idle sessions at most once per sweep interval.
func (m *Manager) sweepIfNeeded() {
	now := time.Now()

	m.mu.Lock()
	if now.Sub(m.lastSweep) < m.sweepInterval {
		m.mu.Unlock()
		return
	}
	m.lastSweep = now

	var expired []*Session
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen()) > m.ttl {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Planner.Close()
	}
	if len(expired) > 0 {
		m.logger.Debug().
			Int("expired", len(expired)).
			Msg("swept idle sessions")
	}
}
