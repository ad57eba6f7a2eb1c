package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		PropertyID: "prop123",
		Categories: map[string]map[string]float64{
			"location": {"walkability_score": 80, "transit_score": 60},
			"market":   {"occupancy_score": 90},
		},
	}
}

func TestScoreWorkedExample(t *testing.T) {
	// location mean = 70, market mean = 90, weights 2:1 normalize to
	// 0.667/0.333, overall ~ 76.7 which lands in the "Recommended" band.
	res, err := Score(sampleRecord(), Weights{"location": 2, "market": 1})
	require.NoError(t, err)

	assert.InDelta(t, 70.0, res.Breakdown["location"], 1e-9)
	assert.InDelta(t, 90.0, res.Breakdown["market"], 1e-9)
	assert.InDelta(t, 76.6667, res.Score, 1e-3)
	assert.Equal(t, "Recommended", res.Recommendation)
	assert.Equal(t, "prop123", res.Details.PropertyID)
}

func TestScoreContributors(t *testing.T) {
	res, err := Score(sampleRecord(), Weights{"location": 2, "market": 1})
	require.NoError(t, err)

	// Each metric stays individually retrievable, named category.metric,
	// ordered by category then metric name.
	assert.Equal(t, []Contributor{
		{Name: "location.transit_score", Value: 60},
		{Name: "location.walkability_score", Value: 80},
		{Name: "market.occupancy_score", Value: 90},
	}, res.Contributors)
}

func TestScoreContributorsClampOutOfRangeMetrics(t *testing.T) {
	record := Record{
		PropertyID: "clamped",
		Categories: map[string]map[string]float64{
			"location": {"walkability_score": 250},
			"risk":     {"market_risk_score": -40},
		},
	}

	res, err := Score(record, nil)
	require.NoError(t, err)

	assert.Equal(t, []Contributor{
		{Name: "location.walkability_score", Value: 100},
		{Name: "risk.market_risk_score", Value: 0},
	}, res.Contributors)
}

func TestScoreRange(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		weights Weights
	}{
		{
			name: "metrics above range are clamped",
			record: Record{Categories: map[string]map[string]float64{
				"location": {"walkability_score": 250},
			}},
		},
		{
			name: "negative metrics are clamped",
			record: Record{Categories: map[string]map[string]float64{
				"risk": {"market_risk_score": -40},
			}},
		},
		{
			name:    "skewed weights stay bounded",
			record:  sampleRecord(),
			weights: Weights{"location": 1000, "market": 0.001},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Score(tt.record, tt.weights)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, 100.0)
		})
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := sampleRecord()
	before, err := Score(base, Weights{"location": 2, "market": 1})
	require.NoError(t, err)

	raised := sampleRecord()
	raised.Categories["location"]["transit_score"] = 75

	after, err := Score(raised, Weights{"location": 2, "market": 1})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.Score, before.Score)
}

func TestEmptyWeightsEqualsUniform(t *testing.T) {
	record := sampleRecord()

	implicit, err := Score(record, Weights{})
	require.NoError(t, err)

	explicit, err := Score(record, Weights{"location": 3, "market": 3})
	require.NoError(t, err)

	assert.InDelta(t, explicit.Score, implicit.Score, 1e-9)
}

func TestUnweightedCategoryGetsNeutralWeight(t *testing.T) {
	record := sampleRecord()
	record.Categories["financial"] = map[string]float64{"roi_score": 50}

	partial, err := Score(record, Weights{"location": 1, "market": 1})
	require.NoError(t, err)

	full, err := Score(record, Weights{"location": 1, "market": 1, "financial": 1})
	require.NoError(t, err)

	assert.InDelta(t, full.Score, partial.Score, 1e-9)
}

func TestScoreSkipsAbsentWeightedCategories(t *testing.T) {
	res, err := Score(sampleRecord(), Weights{"location": 2, "market": 1, "amenities": 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"amenities"}, res.Skipped)
	// Re-normalization over present categories only: the absent category
	// must not dilute the score.
	assert.InDelta(t, 76.6667, res.Score, 1e-3)
}

func TestZeroWeightedCategoryDoesNotContribute(t *testing.T) {
	record := sampleRecord()

	res, err := Score(record, Weights{"location": 1, "market": 0})
	require.NoError(t, err)

	assert.InDelta(t, 70.0, res.Score, 1e-9)
	// The category score stays retrievable even when it carries no weight.
	assert.InDelta(t, 90.0, res.Breakdown["market"], 1e-9)
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		weights Weights
		want    error
	}{
		{
			name:   "no categories at all",
			record: Record{PropertyID: "empty"},
			want:   ErrInvalidRecord,
		},
		{
			name: "categories present but unpopulated",
			record: Record{Categories: map[string]map[string]float64{
				"location": {},
				"market":   nil,
			}},
			want: ErrInvalidRecord,
		},
		{
			name:    "negative weight",
			record:  sampleRecord(),
			weights: Weights{"location": -1},
			want:    ErrInvalidWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.record, tt.weights)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecommendationBands(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{0, "Not Recommended"},
		{39.99, "Not Recommended"},
		{40, "Consider with Caution"},
		{59.99, "Consider with Caution"},
		{60, "Recommended"},
		{79.99, "Recommended"},
		{80, "Highly Recommended"},
		{100, "Highly Recommended"},
	}

	prev := ""
	order := map[string]int{
		"Not Recommended":       0,
		"Consider with Caution": 1,
		"Recommended":           2,
		"Highly Recommended":    3,
	}
	for _, tt := range tests {
		label := Recommendation(tt.score)
		assert.Equal(t, tt.label, label, "score %v", tt.score)
		if prev != "" {
			assert.GreaterOrEqual(t, order[label], order[prev], "labels must be non-decreasing in score")
		}
		prev = label
	}
}

func TestCompareDominatingRecordWins(t *testing.T) {
	strong := Record{
		PropertyID: "strong",
		Categories: map[string]map[string]float64{
			"location": {"walkability_score": 90, "transit_score": 85},
			"market":   {"occupancy_score": 95},
		},
	}
	weak := Record{
		PropertyID: "weak",
		Categories: map[string]map[string]float64{
			"location": {"walkability_score": 40, "transit_score": 35},
			"market":   {"occupancy_score": 50},
		},
	}

	cmp, err := Compare([]Record{strong, weak}, Weights{"location": 2, "market": 1})
	require.NoError(t, err)

	assert.Equal(t, "strong", cmp.BestMatch.Details.PropertyID)
	assert.Equal(t, "strong", cmp.Results[0].Details.PropertyID)
	assert.GreaterOrEqual(t, cmp.ScoreDifference, 0.0)
	assert.InDelta(t, cmp.Results[0].Score-cmp.Results[1].Score, cmp.ScoreDifference, 1e-9)
}

func TestCompareTieKeepsInputOrder(t *testing.T) {
	first := sampleRecord()
	first.PropertyID = "first"
	second := sampleRecord()
	second.PropertyID = "second"

	cmp, err := Compare([]Record{first, second}, nil)
	require.NoError(t, err)

	assert.Equal(t, "first", cmp.BestMatch.Details.PropertyID)
	assert.Zero(t, cmp.ScoreDifference)
}

func TestCompareErrors(t *testing.T) {
	_, err := Compare([]Record{sampleRecord()}, nil)
	assert.ErrorIs(t, err, ErrInsufficientInput)

	_, err = Compare(nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientInput)

	// An invalid record inside the set surfaces its own error and no
	// partial comparison is produced.
	_, err = Compare([]Record{sampleRecord(), {PropertyID: "empty"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestScoreHasNoSideEffectsOnInputs(t *testing.T) {
	record := sampleRecord()
	weights := Weights{"location": 2, "market": 1}

	_, err := Score(record, weights)
	require.NoError(t, err)

	assert.Equal(t, 80.0, record.Categories["location"]["walkability_score"])
	assert.Equal(t, Weights{"location": 2, "market": 1}, weights)
}
