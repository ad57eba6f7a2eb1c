package monitoring

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request counters, response times and access logs for
// every request.
func Middleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementRequest()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordResponse(status, duration)
		if status >= http.StatusBadRequest {
			metrics.IncrementError()
		}

		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, duration)
	}
}
