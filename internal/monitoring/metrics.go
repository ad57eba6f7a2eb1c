package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// maxResponseSamples bounds the percentile window.
const maxResponseSamples = 1000

// Metrics holds application counters served on /metrics.
type Metrics struct {
	RequestCount       int64
	ErrorCount         int64
	CacheHits          int64
	CacheMisses        int64
	AnalysisCount      int64
	CompareCount       int64
	ModelAPICalls      int64
	ModelAPIFails      int64
	RateLimitBlocks    int64
	RateLimitFallbacks int64
	StartTime          time.Time

	responseTimes []time.Duration
	responseMu    sync.Mutex

	statusCounts map[int]int64
	statusMu     sync.Mutex
}

// NewMetrics creates a metrics instance anchored at the current time.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, maxResponseSamples),
		statusCounts:  make(map[int]int64),
	}
}

func (m *Metrics) IncrementRequest()  { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()    { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit() { atomic.AddInt64(&m.CacheHits, 1) }
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}
func (m *Metrics) IncrementAnalysis() { atomic.AddInt64(&m.AnalysisCount, 1) }
func (m *Metrics) IncrementCompare()  { atomic.AddInt64(&m.CompareCount, 1) }

// IncrementRateLimitBlock records one request rejected by rate limiting.
func (m *Metrics) IncrementRateLimitBlock() { atomic.AddInt64(&m.RateLimitBlocks, 1) }

// IncrementRateLimitFallback records one rate limit check served by the
// in-memory limiter instead of Redis.
func (m *Metrics) IncrementRateLimitFallback() { atomic.AddInt64(&m.RateLimitFallbacks, 1) }

// IncrementModelCall records one model API call and whether it succeeded.
func (m *Metrics) IncrementModelCall(success bool) {
	atomic.AddInt64(&m.ModelAPICalls, 1)
	if !success {
		atomic.AddInt64(&m.ModelAPIFails, 1)
	}
}

// RecordResponse records a request's status and duration.
func (m *Metrics) RecordResponse(statusCode int, duration time.Duration) {
	m.statusMu.Lock()
	m.statusCounts[statusCode]++
	m.statusMu.Unlock()

	m.responseMu.Lock()
	if len(m.responseTimes) >= maxResponseSamples {
		// Drop the oldest half rather than shifting on every request.
		m.responseTimes = append(m.responseTimes[:0], m.responseTimes[maxResponseSamples/2:]...)
	}
	m.responseTimes = append(m.responseTimes, duration)
	m.responseMu.Unlock()
}

func (m *Metrics) percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// GetStats returns a snapshot of all counters.
func (m *Metrics) GetStats() map[string]interface{} {
	m.responseMu.Lock()
	sorted := make([]time.Duration, len(m.responseTimes))
	copy(sorted, m.responseTimes)
	m.responseMu.Unlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m.statusMu.Lock()
	statuses := make(map[int]int64, len(m.statusCounts))
	for code, count := range m.statusCounts {
		statuses[code] = count
	}
	m.statusMu.Unlock()

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"request_count":        atomic.LoadInt64(&m.RequestCount),
		"error_count":          atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":           atomic.LoadInt64(&m.CacheHits),
		"cache_misses":         atomic.LoadInt64(&m.CacheMisses),
		"analysis_count":       atomic.LoadInt64(&m.AnalysisCount),
		"compare_count":        atomic.LoadInt64(&m.CompareCount),
		"model_api_calls":      atomic.LoadInt64(&m.ModelAPICalls),
		"model_api_fails":      atomic.LoadInt64(&m.ModelAPIFails),
		"rate_limit_blocks":    atomic.LoadInt64(&m.RateLimitBlocks),
		"rate_limit_fallbacks": atomic.LoadInt64(&m.RateLimitFallbacks),
		"response_p50_ms":      m.percentile(sorted, 0.50).Milliseconds(),
		"response_p95_ms":      m.percentile(sorted, 0.95).Milliseconds(),
		"response_p99_ms":      m.percentile(sorted, 0.99).Milliseconds(),
		"status_counts":        statuses,
	}
}
