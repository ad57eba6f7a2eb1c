package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

func TestValidateAcceptsSample(t *testing.T) {
	p := Sample("prop123", "Mission District")
	assert.NoError(t, p.Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Property)
		field  string
	}{
		{
			name:   "missing id",
			mutate: func(p *Property) { p.ID = " " },
			field:  "id",
		},
		{
			name:   "missing city",
			mutate: func(p *Property) { p.Location.City = "" },
			field:  "location.city",
		},
		{
			name:   "walkability out of range",
			mutate: func(p *Property) { p.Location.WalkabilityScore = 140 },
			field:  "location.walkability_score",
		},
		{
			name:   "negative price",
			mutate: func(p *Property) { p.Financial.PurchasePrice = -1 },
			field:  "financial.purchase_price",
		},
		{
			name:   "noise above 120dB",
			mutate: func(p *Property) { p.Environmental.NoiseLevelDB = 130 },
			field:  "environmental.noise_level_db",
		},
		{
			name:   "green space proximity above 1",
			mutate: func(p *Property) { p.Environmental.GreenSpaceProximity = 2 },
			field:  "environmental.green_space_proximity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Sample("prop123", "Mission District")
			tt.mutate(&p)

			err := p.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.FieldMessages(), tt.field)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	p := Sample("prop123", "Mission District")
	p.ID = ""
	p.Location.TransitScore = -5
	p.Developer.SuccessRate = 150

	err := p.Validate()
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 3)
}

func TestRecordDerivations(t *testing.T) {
	p := Sample("prop123", "Mission District")
	rec := p.Record()

	assert.Equal(t, "prop123", rec.PropertyID)
	assert.Equal(t, 85.0, rec.Categories["location"]["walkability_score"])
	// 5.2% vacancy costs 52 points of occupancy.
	assert.InDelta(t, 48.0, rec.Categories["market"]["occupancy_score"], 1e-9)
	// 6.5% ROI scales to 65.
	assert.InDelta(t, 65.0, rec.Categories["financial"]["roi_score"], 1e-9)
	assert.Equal(t, 100.0, rec.Categories["amenities"]["available_facilities"])
	assert.InDelta(t, 75.0, rec.Categories["risk"]["market_safety"], 1e-9)
}

func TestRecordSaturation(t *testing.T) {
	p := Sample("prop123", "Mission District")
	p.MarketMetrics.VacancyRate = 50
	p.Financial.EstimatedROI = 25
	p.Amenities.AvailableFacilities = nil

	rec := p.Record()
	assert.Zero(t, rec.Categories["market"]["occupancy_score"])
	assert.Equal(t, 100.0, rec.Categories["financial"]["roi_score"])
	assert.Zero(t, rec.Categories["amenities"]["available_facilities"])
}

func TestRecordScoresWithDefaultWeights(t *testing.T) {
	p := Sample("prop123", "Mission District")

	res, err := scoring.Score(p.Record(), DefaultWeights())
	require.NoError(t, err)

	assert.Greater(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
	assert.Empty(t, res.Skipped)
	assert.Len(t, res.Breakdown, 10)
}

func TestDocumentExposesDottedPaths(t *testing.T) {
	p := Sample("prop123", "Mission District")
	doc := p.Document()

	loc, ok := doc["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 85.0, loc["walkability_score"])
	assert.Equal(t, "prop123", doc["id"])
}
