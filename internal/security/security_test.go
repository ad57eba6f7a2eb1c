package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSecuredRouter(m *Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(m.Headers(), m.BodyLimit(), m.ValidateContentType(), m.RequestTimeout())
	router.POST("/analyze", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})
	return router
}

func TestHeadersApplied(t *testing.T) {
	router := newSecuredRouter(NewMiddleware(DefaultConfig()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestContentTypeRejected(t *testing.T) {
	router := newSecuredRouter(NewMiddleware(DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestContentTypeJSONAccepted(t *testing.T) {
	router := newSecuredRouter(NewMiddleware(DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	m := NewMiddleware(Config{MaxBodyBytes: 1024, RequestTimeout: 5 * time.Second})
	router := newSecuredRouter(m)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deadline":true`)
	assert.Equal(t, "5", w.Header().Get("X-Timeout"))
}
