package scoring

// Record is one property's metrics grouped into named categories. Metric
// values are expected on a 0-100 scale; anything outside is clamped before
// aggregation.
type Record struct {
	PropertyID string
	Categories map[string]map[string]float64
}

// Weights maps category name to a non-negative importance coefficient.
// Weights are normalized over the categories actually present in the record,
// so they do not need to sum to one. An empty map means equal weight for
// every category. A category present in the record but missing from a
// non-empty map gets a neutral weight of 1.
type Weights map[string]float64

// Contributor is a single metric's value, named "category.metric" so charts
// can retrieve per-metric scores without re-deriving them.
type Contributor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Details echoes the identifying parts of the input for traceability.
type Details struct {
	PropertyID string             `json:"property_id"`
	Location   map[string]float64 `json:"location,omitempty"`
	Features   map[string]float64 `json:"features,omitempty"`
}

// ScoreResult is the complete outcome of scoring one record.
type ScoreResult struct {
	Score          float64            `json:"score"`
	Recommendation string             `json:"recommendation"`
	Analysis       string             `json:"analysis,omitempty"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Contributors   []Contributor      `json:"contributors"`
	// Skipped lists categories that carried a positive weight but had no
	// data in the record, so callers know they did not contribute.
	Skipped []string `json:"skipped_categories,omitempty"`
	Details Details  `json:"details"`
}

// Comparison holds the outcome of scoring several records with the same
// weights. Results are sorted by score, best first; ties keep input order.
type Comparison struct {
	Results         []ScoreResult `json:"comparisons"`
	BestMatch       ScoreResult   `json:"best_match"`
	ScoreDifference float64       `json:"score_difference"`
	Summary         string        `json:"summary"`
}
