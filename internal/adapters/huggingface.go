// Package adapters holds clients for the external APIs the service talks
// to. Adapters are constructed once in main and injected; nothing here is a
// package-level singleton.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/righthome-ai/property-analyzer/internal/resilience"
)

// defaultModel is the text-generation model the original assistant shipped
// with.
const defaultModel = "google/flan-t5-large"

const inferenceBaseURL = "https://api-inference.huggingface.co/models"

// generateRequest is the HuggingFace inference API request body.
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	Temperature float64 `json:"temperature"`
	MaxLength   int     `json:"max_length"`
}

// generateResponse is one entry of the inference API response array.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// HuggingFaceAdapter calls the HuggingFace inference API for analysis text.
type HuggingFaceAdapter struct {
	token   string
	model   string
	baseURL string
	pool    *resilience.ConnectionPool
}

// NewHuggingFaceAdapter creates an adapter with connection pooling and a
// circuit breaker. An empty token produces an unauthenticated adapter; the
// bot treats that as "no model available" and falls back to template text.
func NewHuggingFaceAdapter(token, model string) *HuggingFaceAdapter {
	if model == "" {
		model = defaultModel
	}

	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	pool := resilience.NewConnectionPool(10, 20, 30*time.Second, cb)

	return &HuggingFaceAdapter{
		token:   token,
		model:   model,
		baseURL: inferenceBaseURL,
		pool:    pool,
	}
}

// IsAuthenticated reports whether a bearer token is configured.
func (h *HuggingFaceAdapter) IsAuthenticated() bool {
	return h.token != ""
}

// Model returns the configured model id.
func (h *HuggingFaceAdapter) Model() string {
	return h.model
}

// Generate runs a text-generation call and returns the generated text.
func (h *HuggingFaceAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			Temperature: 0.7,
			MaxLength:   512,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.pool.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call inference API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("inference API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var results []generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}
	if len(results) == 0 || results[0].GeneratedText == "" {
		return "", fmt.Errorf("inference API returned no generated text")
	}

	return results[0].GeneratedText, nil
}

// GetPoolStats exposes connection pool statistics.
func (h *HuggingFaceAdapter) GetPoolStats() map[string]interface{} {
	return h.pool.Stats()
}

// Close releases pooled connections.
func (h *HuggingFaceAdapter) Close() {
	h.pool.Close()
}
