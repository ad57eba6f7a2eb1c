// Package types holds the request and response shapes of the HTTP API.
package types

import (
	"github.com/righthome-ai/property-analyzer/internal/property"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
	"github.com/righthome-ai/property-analyzer/internal/viz"
)

// AnalyzeRequest asks for one property to be scored. Preferences may be
// empty; the default weighting then applies.
type AnalyzeRequest struct {
	Property    property.Property `json:"property" binding:"required"`
	Preferences scoring.Weights   `json:"preferences"`
}

// CompareRequest asks for two or more properties to be ranked with the same
// preferences.
type CompareRequest struct {
	Properties  []property.Property `json:"properties" binding:"required"`
	Preferences scoring.Weights     `json:"preferences"`
}

// AnalyzeResponse is the scored property plus its chart payloads and the id
// under which the analysis was persisted.
type AnalyzeResponse struct {
	scoring.ScoreResult
	AnalysisID string                `json:"analysis_id,omitempty"`
	Charts     map[string]viz.Figure `json:"charts,omitempty"`
}

// CompareResponse is the ranked comparison plus its chart payloads and the id
// under which it was persisted.
type CompareResponse struct {
	scoring.Comparison
	ComparisonID string                `json:"comparison_id,omitempty"`
	Charts       map[string]viz.Figure `json:"charts,omitempty"`
}
