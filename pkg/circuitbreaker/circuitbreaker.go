package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is refusing calls.
var ErrOpen = errors.New("circuit breaker open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type Settings struct {
	Name string
	// FailureThreshold is how many consecutive failures trip the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before allowing a probe.
	Cooldown time.Duration
}

// CircuitBreaker sheds calls to a dependency that keeps failing. After
// Cooldown a single probe is let through; success closes the breaker,
// failure reopens it.
type CircuitBreaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func New(settings Settings) *CircuitBreaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 10 * time.Second
	}
	return &CircuitBreaker{settings: settings, state: StateClosed}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrOpen
	}
	err := fn()
	cb.record(err == nil)
	return err
}

// State reports the current state without advancing it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.settings.Cooldown {
			return false
		}
		cb.state = StateHalfOpen
	}
	return true
}

func (cb *CircuitBreaker) record(ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if ok {
		cb.state = StateClosed
		cb.failures = 0
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.settings.FailureThreshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}
