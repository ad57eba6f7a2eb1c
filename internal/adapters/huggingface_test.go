package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHuggingFaceAdapterDefaults(t *testing.T) {
	adapter := NewHuggingFaceAdapter("", "")
	defer adapter.Close()

	assert.False(t, adapter.IsAuthenticated())
	assert.Equal(t, defaultModel, adapter.Model())
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "analyze this", req.Inputs)
		assert.InDelta(t, 0.7, req.Parameters.Temperature, 1e-9)
		assert.Equal(t, 512, req.Parameters.MaxLength)

		json.NewEncoder(w).Encode([]generateResponse{{GeneratedText: "a strong investment"}})
	}))
	defer server.Close()

	adapter := NewHuggingFaceAdapter("test-token", "test-model")
	defer adapter.Close()
	adapter.baseURL = server.URL

	text, err := adapter.Generate(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, "a strong investment", text)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewHuggingFaceAdapter("test-token", "test-model")
	defer adapter.Close()
	adapter.baseURL = server.URL

	_, err := adapter.Generate(context.Background(), "analyze this")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestGenerateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]generateResponse{})
	}))
	defer server.Close()

	adapter := NewHuggingFaceAdapter("test-token", "test-model")
	defer adapter.Close()
	adapter.baseURL = server.URL

	_, err := adapter.Generate(context.Background(), "analyze this")
	assert.Error(t, err)
}

func TestGenerateContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	adapter := NewHuggingFaceAdapter("test-token", "test-model")
	defer adapter.Close()
	adapter.baseURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := adapter.Generate(ctx, "analyze this")
	assert.Error(t, err)
}
