package resilience

import (
	"net/http"
	"sync/atomic"
	"time"
)

// ConnectionPool is a shared HTTP client with bounded keep-alive connections
// and a circuit breaker in front of every request.
type ConnectionPool struct {
	client  *http.Client
	breaker *CircuitBreaker

	requests int64
	errors   int64
}

// NewConnectionPool builds a pooled client. maxIdle bounds idle connections
// overall, maxIdlePerHost per backend host.
func NewConnectionPool(maxIdle, maxIdlePerHost int, timeout time.Duration, breaker *CircuitBreaker) *ConnectionPool {
	transport := &http.Transport{
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdlePerHost,
		IdleConnTimeout:     90 * time.Second,
	}
	return &ConnectionPool{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		breaker: breaker,
	}
}

// Do sends the request through the pool, honoring the circuit breaker.
// A response with status >= 500 counts as a breaker failure.
func (p *ConnectionPool) Do(req *http.Request) (*http.Response, error) {
	if p.breaker != nil && !p.breaker.Allow() {
		atomic.AddInt64(&p.errors, 1)
		return nil, ErrCircuitOpen
	}

	atomic.AddInt64(&p.requests, 1)
	resp, err := p.client.Do(req)
	if err != nil {
		atomic.AddInt64(&p.errors, 1)
		if p.breaker != nil {
			p.breaker.RecordFailure()
		}
		return nil, err
	}

	if p.breaker != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
	}
	return resp, nil
}

// Stats returns pool counters for the diagnostics endpoints.
func (p *ConnectionPool) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"requests": atomic.LoadInt64(&p.requests),
		"errors":   atomic.LoadInt64(&p.errors),
	}
	if p.breaker != nil {
		stats["circuit_breaker"] = p.breaker.Stats()
	}
	return stats
}

// Close releases idle connections.
func (p *ConnectionPool) Close() {
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
