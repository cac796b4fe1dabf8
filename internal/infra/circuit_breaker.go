package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the mail relay. While open, sends fail immediately instead of waiting
// on a provider that is known to be down. It never retries on its own.
//
// States:
//   - Closed:    sends pass through
//   - Open:      sends fail fast until OpenTimeout elapses
//   - Half-Open: sends pass through; SuccessThreshold successes close it again

// BreakerState represents the current circuit breaker state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String returns the state name used in /health and logs.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds tunable parameters.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open
	SuccessThreshold int           // half-open successes needed to close
	OpenTimeout      time.Duration // time spent open before probing
}

// DefaultBreakerConfig suits a relay called a handful of times per ticket.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	mu          sync.Mutex
	cfg         BreakerConfig
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
	now         func() time.Time
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, state: BreakerClosed, now: time.Now}
}

// State returns the current state, moving open → half-open once the timeout
// has elapsed.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentLocked()
}

func (cb *CircuitBreaker) currentLocked() BreakerState {
	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailure) >= cb.cfg.OpenTimeout {
		cb.state = BreakerHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == BreakerOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == BreakerHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.state = BreakerOpen
			cb.failures = 0
		}
		return err
	}

	switch cb.state {
	case BreakerClosed:
		cb.failures = 0
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = BreakerClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
	return nil
}
