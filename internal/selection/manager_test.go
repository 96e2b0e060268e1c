package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerReusesSessionResolver(t *testing.T) {
	m := NewManager(nil)

	first := m.Get("front-desk-1")
	second := m.Get("front-desk-1")
	assert.Same(t, first, second)

	other := m.Get("front-desk-2")
	assert.NotSame(t, first, other)
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	m := NewManager(nil)
	stale := m.Get("abandoned-kiosk")

	m.mu.Lock()
	m.sessions["abandoned-kiosk"].lastSeen = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	m.evictIdle(sessionIdleTimeout)

	m.mu.Lock()
	_, ok := m.sessions["abandoned-kiosk"]
	m.mu.Unlock()
	require.False(t, ok)

	// the next Get starts a fresh session
	assert.NotSame(t, stale, m.Get("abandoned-kiosk"))
}

func TestManagerKeepsActiveSessions(t *testing.T) {
	m := NewManager(nil)
	active := m.Get("front-desk-1")

	m.evictIdle(sessionIdleTimeout)

	assert.Same(t, active, m.Get("front-desk-1"))
}
