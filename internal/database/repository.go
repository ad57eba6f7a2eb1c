package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/righthome-ai/property-analyzer/internal/property"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// defaultListLimit bounds unpaginated listing queries.
const defaultListLimit = 50

// Repository handles database operations.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over db.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveAnalysis stores one score result together with the property it was
// computed from and returns the stored row.
func (r *Repository) SaveAnalysis(p *property.Property, result scoring.ScoreResult) (*Analysis, error) {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to encode breakdown: %w", err)
	}
	snapshot, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode property: %w", err)
	}

	analysis := NewAnalysis(
		p.ID,
		p.Location.Neighborhood,
		result.Score,
		result.Recommendation,
		result.Analysis,
		string(breakdown),
		string(snapshot),
	)

	stmt, err := r.db.GetPreparedStatement("insert_analysis")
	if err != nil {
		return nil, err
	}
	_, err = stmt.Exec(
		analysis.ID, analysis.PropertyID, analysis.Neighborhood,
		analysis.Score, analysis.Recommendation, analysis.Analysis,
		analysis.Breakdown, analysis.Property, analysis.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	return analysis, nil
}

// GetAnalysis fetches one stored analysis by id.
func (r *Repository) GetAnalysis(id string) (*Analysis, error) {
	stmt, err := r.db.GetPreparedStatement("get_analysis")
	if err != nil {
		return nil, err
	}

	var a Analysis
	err = stmt.QueryRow(id).Scan(
		&a.ID, &a.PropertyID, &a.Neighborhood, &a.Score, &a.Recommendation,
		&a.Analysis, &a.Breakdown, &a.Property, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return &a, nil
}

// ListAnalyses returns the most recent analyses, newest first. A non-positive
// limit applies the default.
func (r *Repository) ListAnalyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	stmt, err := r.db.GetPreparedStatement("list_analyses")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]Analysis, 0, limit)
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(
			&a.ID, &a.PropertyID, &a.Neighborhood, &a.Score, &a.Recommendation,
			&a.Analysis, &a.Breakdown, &a.Property, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return analyses, nil
}

// SaveComparison stores a ranked comparison and returns the stored row.
func (r *Repository) SaveComparison(cmp scoring.Comparison) (*ComparisonRecord, error) {
	results, err := json.Marshal(cmp.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comparison results: %w", err)
	}

	record := NewComparisonRecord(
		len(cmp.Results),
		cmp.BestMatch.Details.PropertyID,
		cmp.ScoreDifference,
		cmp.Summary,
		string(results),
	)

	stmt, err := r.db.GetPreparedStatement("insert_comparison")
	if err != nil {
		return nil, err
	}
	_, err = stmt.Exec(
		record.ID, record.PropertyCount, record.BestMatchID,
		record.ScoreDifference, record.Summary, record.Results, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comparison: %w", err)
	}

	return record, nil
}

// GetComparison fetches one stored comparison by id.
func (r *Repository) GetComparison(id string) (*ComparisonRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_comparison")
	if err != nil {
		return nil, err
	}

	var c ComparisonRecord
	err = stmt.QueryRow(id).Scan(
		&c.ID, &c.PropertyCount, &c.BestMatchID,
		&c.ScoreDifference, &c.Summary, &c.Results, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comparison %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	return &c, nil
}
