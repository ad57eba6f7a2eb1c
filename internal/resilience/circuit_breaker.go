// Package resilience guards calls to external collaborators (the language
// model API) with a circuit breaker, retry with backoff, a pooled HTTP
// client, and a service-health registry.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call outright.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreakerConfig tunes when a breaker trips and recovers.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	RecoveryTimeout  time.Duration // how long to stay open before probing
	SuccessThreshold int           // consecutive probe successes to close
}

// DefaultCircuitBreakerConfig matches the settings used for the model API.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 3,
	}
}

// CircuitBreaker is a standard three-state breaker. Safe for concurrent use.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       circuitState
	failures    int
	successes   int
	openedAt    time.Time
	totalOpens  int64
	totalCalls  int64
	totalErrors int64
}

// NewCircuitBreaker creates a breaker; zero-valued config fields fall back
// to the defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = def.RecoveryTimeout
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	return &CircuitBreaker{config: config}
}

// Allow reports whether a call may proceed, transitioning open breakers to
// half-open once the recovery timeout has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalCalls++
	switch cb.state {
	case stateOpen:
		if time.Since(cb.openedAt) >= cb.config.RecoveryTimeout {
			cb.state = stateHalfOpen
			cb.successes = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess feeds a successful call back into the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == stateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = stateClosed
		}
	}
}

// RecordFailure feeds a failed call back into the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalErrors++
	cb.failures++
	if cb.state == stateHalfOpen || cb.failures >= cb.config.FailureThreshold {
		if cb.state != stateOpen {
			cb.totalOpens++
		}
		cb.state = stateOpen
		cb.openedAt = time.Now()
		cb.successes = 0
	}
}

// Execute runs fn under the breaker, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// Stats returns a snapshot for the health endpoints.
func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":        cb.state.String(),
		"failures":     cb.failures,
		"total_calls":  cb.totalCalls,
		"total_errors": cb.totalErrors,
		"total_opens":  cb.totalOpens,
	}
}
