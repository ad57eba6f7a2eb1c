package database

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one stored property analysis.
type Analysis struct {
	ID             string    `json:"id" db:"id"`
	PropertyID     string    `json:"property_id" db:"property_id"`
	Neighborhood   string    `json:"neighborhood,omitempty" db:"neighborhood"`
	Score          float64   `json:"score" db:"score"`
	Recommendation string    `json:"recommendation" db:"recommendation"`
	Analysis       string    `json:"analysis,omitempty" db:"analysis"`
	Breakdown      string    `json:"-" db:"breakdown"` // JSON map of category scores
	Property       string    `json:"-" db:"property"`  // JSON snapshot of the input
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ComparisonRecord is one stored multi-property comparison.
type ComparisonRecord struct {
	ID              string    `json:"id" db:"id"`
	PropertyCount   int       `json:"property_count" db:"property_count"`
	BestMatchID     string    `json:"best_match_id" db:"best_match_id"`
	ScoreDifference float64   `json:"score_difference" db:"score_difference"`
	Summary         string    `json:"summary" db:"summary"`
	Results         string    `json:"-" db:"results"` // JSON array of ranked results
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// NewAnalysis creates an analysis row with a generated id.
func NewAnalysis(propertyID, neighborhood string, score float64, recommendation, analysis, breakdown, property string) *Analysis {
	return &Analysis{
		ID:             uuid.New().String(),
		PropertyID:     propertyID,
		Neighborhood:   neighborhood,
		Score:          score,
		Recommendation: recommendation,
		Analysis:       analysis,
		Breakdown:      breakdown,
		Property:       property,
		CreatedAt:      time.Now(),
	}
}

// NewComparisonRecord creates a comparison row with a generated id.
func NewComparisonRecord(propertyCount int, bestMatchID string, scoreDifference float64, summary, results string) *ComparisonRecord {
	return &ComparisonRecord{
		ID:              uuid.New().String(),
		PropertyCount:   propertyCount,
		BestMatchID:     bestMatchID,
		ScoreDifference: scoreDifference,
		Summary:         summary,
		Results:         results,
		CreatedAt:       time.Now(),
	}
}
