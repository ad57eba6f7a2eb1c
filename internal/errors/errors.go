// Package errors provides structured application errors on top of
// errbuilder, plus the gin middleware that turns them into HTTP responses.
// The scoring package's error values (invalid record, invalid weights,
// insufficient input) map onto validation responses here so the pure core
// stays free of HTTP concerns.
package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"

	"github.com/righthome-ai/property-analyzer/internal/property"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

// ErrorCategory defines the type of error for handling and logging.
type ErrorCategory string

const (
	CategoryValidation  ErrorCategory = "validation"
	CategoryScoring     ErrorCategory = "scoring"
	CategoryNotFound    ErrorCategory = "not_found"
	CategoryNetwork     ErrorCategory = "network"
	CategoryTimeout     ErrorCategory = "timeout"
	CategoryRateLimit   ErrorCategory = "rate_limit"
	CategoryInternal    ErrorCategory = "internal"
	CategoryExternalAPI ErrorCategory = "external_api"
)

// AppError wraps an errbuilder error with the context the HTTP layer needs.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	StackTrace string        `json:"stack_trace,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Category)), e.ErrBuilder.Msg)
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, status int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates a 400 for malformed or out-of-range input.
func NewValidationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return newAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewValidationErrorWithFields creates a 400 that carries every field
// violation, as produced by property.Validate.
func NewValidationErrorWithFields(message string, fields map[string]string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if len(fields) > 0 {
		errMap := errbuilder.ErrorMap{}
		for field, msg := range fields {
			errMap.Set(field, errors.New(msg))
		}
		builder = builder.WithDetails(errbuilder.NewErrDetails(errMap))
	}
	return newAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewScoringError creates a 422 for requests that parse but cannot be
// scored (no populated categories, negative weights, too few records).
func NewScoringError(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(cause.Error()).
		WithCause(cause)
	return newAppError(builder, CategoryScoring, http.StatusUnprocessableEntity)
}

// NewNotFoundError creates a 404 for missing persisted resources.
func NewNotFoundError(resource, id string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s %q not found", resource, id))
	return newAppError(builder, CategoryNotFound, http.StatusNotFound)
}

// NewTimeoutError creates a 504 for deadline and cancellation failures.
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewExternalAPIError creates a 502 for failures of the model API or Redis.
func NewExternalAPIError(apiName string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("%s API error", apiName))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryExternalAPI, http.StatusBadGateway)
}

// NewRateLimitError creates a 429.
func NewRateLimitError(retryAfter time.Duration) *AppError {
	errMap := errbuilder.ErrorMap{}
	errMap.Set("retry_after", errors.New(retryAfter.String()))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errMap))
	return newAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewInternalError creates a 500 and captures a stack trace outside release
// mode.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := newAppError(builder, CategoryInternal, http.StatusInternalServerError)
	if gin.Mode() != gin.ReleaseMode {
		appErr.StackTrace = captureStackTrace()
	}
	return appErr
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ToAppError converts any error to an AppError, mapping known error values
// from the core packages onto the right categories and statuses.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, scoring.ErrInvalidRecord),
		errors.Is(err, scoring.ErrInvalidWeights),
		errors.Is(err, scoring.ErrInsufficientInput):
		return NewScoringError(err)
	}

	var vErr *property.ValidationError
	if errors.As(err, &vErr) {
		return NewValidationErrorWithFields("invalid property", vErr.FieldMessages())
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request deadline exceeded", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		builder := errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("network connection failed").
			WithCause(err)
		return newAppError(builder, CategoryNetwork, http.StatusBadGateway)
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return NewTimeoutError("request timeout", err)
	}

	return NewInternalError("an unexpected error occurred", err)
}

// IsRetryableError reports whether a retry could plausibly succeed.
func IsRetryableError(err error) bool {
	switch ToAppError(err).Category {
	case CategoryNetwork, CategoryTimeout, CategoryExternalAPI, CategoryRateLimit:
		return true
	default:
		return false
	}
}

// ErrorHandler is gin middleware turning collected errors into structured
// responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
	}
}

// RecoveryHandler converts panics into 500 responses instead of dropping
// the connection.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("panic recovered: %v", recovered),
			fmt.Errorf("%v", recovered),
		)
		appErr.StackTrace = captureStackTrace()

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// LogError logs an error at a level matching its category: client mistakes
// warn, upstream trouble informs, everything else errors.
func LogError(c *gin.Context, err *AppError) {
	entry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	switch err.Category {
	case CategoryValidation, CategoryScoring, CategoryRateLimit, CategoryNotFound:
		entry.Warn(err.ErrBuilder.Msg)
	case CategoryNetwork, CategoryTimeout, CategoryExternalAPI:
		if cause := err.Unwrap(); cause != nil {
			entry.Info(err.ErrBuilder.Msg, "cause", cause)
		} else {
			entry.Info(err.ErrBuilder.Msg)
		}
	default:
		if cause := err.Unwrap(); cause != nil {
			entry.Error(err.ErrBuilder.Msg, "cause", cause)
		} else {
			entry.Error(err.ErrBuilder.Msg)
		}
	}
}
