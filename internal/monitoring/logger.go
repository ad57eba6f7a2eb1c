package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog with helpers for the events this service cares about.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to stdout.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs one finished HTTP request.
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AnalysisLogger logs one completed property analysis.
func (l *Logger) AnalysisLogger(propertyID string, score float64, recommendation string, duration time.Duration, cacheHit bool) {
	l.Info("Analysis Completed",
		"property_id", propertyID,
		"score", score,
		"recommendation", recommendation,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// ComparisonLogger logs one completed property comparison.
func (l *Logger) ComparisonLogger(count int, bestMatch string, spread float64, duration time.Duration) {
	l.Info("Comparison Completed",
		"properties", count,
		"best_match", bestMatch,
		"score_difference", spread,
		"duration_ms", duration.Milliseconds(),
	)
}

// ModelAPILogger logs one call to the language model API.
func (l *Logger) ModelAPILogger(model string, statusCode int, duration time.Duration, success bool) {
	l.Info("Model API Call",
		"model", model,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// APIErrorLogger logs a handler-level failure.
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		"error", err,
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
	)
}
