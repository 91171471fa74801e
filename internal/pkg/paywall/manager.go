package paywall

import (
	"sync"
	"time"
)

// defaultManagerTTL bounds how long an idle entry outlives its last use.
// Cookie sessions that simply expire never call Remove, so the manager has
// to evict on its own.
const defaultManagerTTL = 2 * time.Hour

// Manager owns one Session per browsing session. Sessions are created on
// first use, dropped on sign-out, and evicted after sitting idle for TTL;
// their cached verdicts live only as long as the entry.
type Manager struct {
	// TTL is the idle lifetime of an entry. Tests inject short values.
	TTL time.Duration

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	session  *Session
	lastSeen time.Time
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		TTL:      defaultManagerTTL,
		sessions: make(map[string]*managedSession),
	}
}

// Get returns the controller for a browsing session, creating it with the
// given check function if absent. Each call also sweeps idle entries.
func (m *Manager) Get(sessionID string, check CheckFunc) *Session {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictIdle(now)

	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = now
		return e.session
	}
	s := NewSession(check)
	m.sessions[sessionID] = &managedSession{session: s, lastSeen: now}
	return s
}

// Remove signs out and drops the controller for a browsing session.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if ok {
		e.session.SignOut()
	}
}

// Len reports how many controllers are currently held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictIdle drops entries idle longer than TTL, cancelling any poll they
// still run. Caller holds mu.
func (m *Manager) evictIdle(now time.Time) {
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.TTL {
			delete(m.sessions, id)
			e.session.SignOut()
		}
	}
}
