package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

func TestToAppErrorMapsScoringErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid record", fmt.Errorf("property %q: %w", "p1", scoring.ErrInvalidRecord)},
		{"invalid weights", scoring.ErrInvalidWeights},
		{"insufficient input", scoring.ErrInsufficientInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			assert.Equal(t, CategoryScoring, appErr.Category)
			assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
			assert.ErrorIs(t, appErr.Unwrap(), tt.err)
		})
	}
}

func TestToAppErrorPassthrough(t *testing.T) {
	original := NewValidationError("bad input")
	assert.Same(t, original, ToAppError(original))
	assert.Same(t, original, ToAppError(fmt.Errorf("wrapped: %w", original)))
}

func TestToAppErrorContext(t *testing.T) {
	assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	assert.Equal(t, CategoryTimeout, ToAppError(context.Canceled).Category)
}

func TestToAppErrorDefaultsToInternal(t *testing.T) {
	appErr := ToAppError(errors.New("something odd"))
	assert.Equal(t, CategoryInternal, appErr.Category)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestNewValidationErrorWithFields(t *testing.T) {
	appErr := NewValidationErrorWithFields("invalid property", map[string]string{
		"location.city": "is required",
	})
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, CategoryValidation, appErr.Category)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewExternalAPIError("HuggingFace", errors.New("503"))))
	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.False(t, IsRetryableError(NewValidationError("nope")))
	assert.False(t, IsRetryableError(scoring.ErrInvalidWeights))
}
