package selection

import (
	"sync"
	"time"

	"github.com/jwalitptl/clinic-queue-api/internal/catalog"
)

// sessionIdleTimeout is how long an untouched session survives before the
// manager reclaims it. Kiosks that close the booking flow without calling
// Drop would otherwise leak resolvers.
const sessionIdleTimeout = 30 * time.Minute

// Manager hands out one resolver per filter/booking session. Sessions are
// transient; callers drop them when the filter panel or booking flow
// closes, and idle ones are evicted in the background.
type Manager struct {
	catalog *catalog.Service

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	resolver *Resolver
	lastSeen time.Time
}

func NewManager(catalogSvc *catalog.Service) *Manager {
	m := &Manager{
		catalog:  catalogSvc,
		sessions: make(map[string]*session),
	}
	go m.prune()
	return m
}

// Get returns the session's resolver, creating it on first use.
func (m *Manager) Get(sessionID string) *Resolver {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{resolver: NewResolver(m.catalog)}
		m.sessions[sessionID] = s
	}
	s.lastSeen = time.Now()
	return s.resolver
}

// Drop discards a session's resolver.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) prune() {
	for range time.Tick(time.Minute) {
		m.evictIdle(sessionIdleTimeout)
	}
}

func (m *Manager) evictIdle(maxIdle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if time.Since(s.lastSeen) > maxIdle {
			delete(m.sessions, id)
		}
	}
}
