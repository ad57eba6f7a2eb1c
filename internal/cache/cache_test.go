package cache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-analyzer/internal/monitoring"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("key", []byte("value"))
	data, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, []byte("value"), data)

	_, found = c.Get("other")
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)

	c.Set("key", []byte("value"))
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestCacheClearAndSize(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	assert.Equal(t, 2, c.Size())

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", []byte("1"))

	stats := c.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, 1, stats["active_items"])
	assert.Equal(t, 60.0, stats["ttl_seconds"])
}

func newCachedRouter(c *Cache, metrics *monitoring.Metrics, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(c.Middleware(metrics))
	handler := func(ctx *gin.Context) {
		*hits++
		ctx.JSON(http.StatusOK, gin.H{"score": 76.67})
	}
	router.POST("/analyze", handler)
	router.POST("/compare", handler)
	router.POST("/other", handler)
	return router
}

func TestMiddlewareServesFromCache(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	hits := 0
	router := newCachedRouter(c, metrics, &hits)

	body := `{"property":{"id":"prop123"}}`

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	assert.Equal(t, 1, hits)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
}

func TestMiddlewareDistinctBodies(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	hits := 0
	router := newCachedRouter(c, metrics, &hits)

	for _, body := range []string{`{"id":"a"}`, `{"id":"b"}`} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/compare", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, hits)
}

func TestMiddlewareSkipsOtherPaths(t *testing.T) {
	c := NewCache(time.Minute)
	metrics := monitoring.NewMetrics()
	hits := 0
	router := newCachedRouter(c, metrics, &hits)

	body := `{"id":"a"}`
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/other", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, c.Size())
}
