package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementAnalysis()
	m.IncrementCompare()
	m.IncrementModelCall(true)
	m.IncrementModelCall(false)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["request_count"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["analysis_count"])
	assert.Equal(t, int64(2), stats["model_api_calls"])
	assert.Equal(t, int64(1), stats["model_api_fails"])
}

func TestMetricsPercentiles(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordResponse(200, time.Duration(i)*time.Millisecond)
	}

	stats := m.GetStats()
	assert.Equal(t, int64(50), stats["response_p50_ms"])
	assert.Equal(t, int64(95), stats["response_p95_ms"])

	statuses := stats["status_counts"].(map[int]int64)
	assert.Equal(t, int64(100), statuses[200])
}

func TestMetricsSampleWindowBounded(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < maxResponseSamples*3; i++ {
		m.RecordResponse(200, time.Millisecond)
	}

	m.responseMu.Lock()
	defer m.responseMu.Unlock()
	assert.LessOrEqual(t, len(m.responseTimes), maxResponseSamples)
}
