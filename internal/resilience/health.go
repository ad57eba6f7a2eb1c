package resilience

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DegradationLevel classifies how healthy an external service currently is.
type DegradationLevel string

const (
	LevelNormal    DegradationLevel = "normal"
	LevelDegraded  DegradationLevel = "degraded"
	LevelEmergency DegradationLevel = "emergency"
)

// ServiceHealth is one service's rolling health snapshot.
type ServiceHealth struct {
	Name      string           `json:"name"`
	Level     DegradationLevel `json:"level"`
	Requests  int64            `json:"requests"`
	Errors    int64            `json:"errors"`
	ErrorRate float64          `json:"error_rate"`
	LastCheck time.Time        `json:"last_check"`
	LastError string           `json:"last_error,omitempty"`
}

type service struct {
	mu       sync.Mutex
	health   ServiceHealth
	check    func(ctx context.Context) error
	breaker  *CircuitBreaker
}

// Registry tracks external services and their breakers. One registry is
// created in main and shared by injection.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*service

	checkInterval time.Duration
}

// NewRegistry creates a registry that probes services at the given interval
// once StartHealthChecks runs.
func NewRegistry(checkInterval time.Duration) *Registry {
	if checkInterval <= 0 {
		checkInterval = 30 * time.Second
	}
	return &Registry{
		services:      make(map[string]*service),
		checkInterval: checkInterval,
	}
}

// Register adds a service with a health-check probe.
func (r *Registry) Register(name string, check func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[name] = &service{
		health:  ServiceHealth{Name: name, Level: LevelNormal, LastCheck: time.Now()},
		check:   check,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
	}
}

func (r *Registry) get(name string) *service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services[name]
}

// RecordRequest feeds a call outcome into a service's health accounting.
func (r *Registry) RecordRequest(name string, ok bool) {
	svc := r.get(name)
	if svc == nil {
		return
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.health.Requests++
	if !ok {
		svc.health.Errors++
	}
	svc.health.ErrorRate = float64(svc.health.Errors) / float64(svc.health.Requests)
	svc.health.Level = levelFor(svc.health.ErrorRate, svc.health.Requests)
}

// RecordError feeds a call failure with its error into the accounting.
func (r *Registry) RecordError(name string, err error) {
	svc := r.get(name)
	if svc == nil {
		return
	}

	svc.mu.Lock()
	svc.health.LastError = err.Error()
	svc.mu.Unlock()

	r.RecordRequest(name, false)
	svc.breaker.RecordFailure()
}

// IsAvailable reports whether a service should be called at all.
func (r *Registry) IsAvailable(name string) bool {
	svc := r.get(name)
	if svc == nil {
		return true
	}

	svc.mu.Lock()
	level := svc.health.Level
	svc.mu.Unlock()

	return level != LevelEmergency && svc.breaker.Allow()
}

// ExecuteWithRetry runs fn against a service with exponential backoff under
// the service's circuit breaker. It gives up after three attempts or when
// the context ends.
func (r *Registry) ExecuteWithRetry(ctx context.Context, name string, fn func() error) error {
	svc := r.get(name)

	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100<<attempt) * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if svc != nil {
			if !svc.breaker.Allow() {
				lastErr = ErrCircuitOpen
				continue
			}
			if err := fn(); err != nil {
				svc.breaker.RecordFailure()
				lastErr = err
				continue
			}
			svc.breaker.RecordSuccess()
			return nil
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// AllServiceHealth returns a snapshot of every registered service.
func (r *Registry) AllServiceHealth() map[string]ServiceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ServiceHealth, len(r.services))
	for name, svc := range r.services {
		svc.mu.Lock()
		out[name] = svc.health
		svc.mu.Unlock()
	}
	return out
}

// CircuitBreakerStats returns per-service breaker snapshots.
func (r *Registry) CircuitBreakerStats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]interface{}, len(r.services))
	for name, svc := range r.services {
		out[name] = svc.breaker.Stats()
	}
	return out
}

// StartHealthChecks probes every registered service until ctx ends.
func (r *Registry) StartHealthChecks(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runChecks(ctx)
			}
		}
	}()
}

func (r *Registry) runChecks(ctx context.Context) {
	r.mu.RLock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	r.mu.RUnlock()

	for _, name := range names {
		svc := r.get(name)
		if svc == nil || svc.check == nil {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := svc.check(checkCtx)
		cancel()

		svc.mu.Lock()
		svc.health.LastCheck = time.Now()
		if err != nil {
			svc.health.LastError = err.Error()
			svc.health.Level = LevelDegraded
			slog.Warn("Service health check failed", "service", name, "error", err)
		}
		svc.mu.Unlock()
	}
}

// levelFor derives the degradation level from the rolling error rate.
// Services with little traffic stay normal; sustained failure rates above
// half escalate to emergency and stop being called.
func levelFor(errorRate float64, requests int64) DegradationLevel {
	if requests < 5 {
		return LevelNormal
	}
	switch {
	case errorRate >= 0.5:
		return LevelEmergency
	case errorRate >= 0.2:
		return LevelDegraded
	default:
		return LevelNormal
	}
}
