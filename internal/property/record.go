package property

import (
	"encoding/json"

	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

// DefaultWeights are the category importances used when the caller supplies
// no preferences. They sum to 1 but do not have to; the aggregator
// normalizes whatever it receives.
func DefaultWeights() scoring.Weights {
	return scoring.Weights{
		"location":      0.20,
		"market":        0.15,
		"features":      0.15,
		"amenities":     0.10,
		"environmental": 0.10,
		"financial":     0.10,
		"developer":     0.05,
		"tech":          0.05,
		"risk":          0.05,
		"economic":      0.05,
	}
}

// Record derives the 0-100 sub-metrics each category feeds the aggregator.
// Rates and indices that are not naturally on a 0-100 scale are rescaled
// here so the aggregator only ever sees comparable values: vacancy rate
// converts to an occupancy score (each point of vacancy costs ten points),
// ROI scales by ten and saturates at 100, risk inverts so higher is better.
func (p *Property) Record() scoring.Record {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return v
	}

	facilityScore := 0.0
	if len(p.Amenities.AvailableFacilities) > 0 {
		facilityScore = 100
	}

	return scoring.Record{
		PropertyID: p.ID,
		Categories: map[string]map[string]float64{
			"location": {
				"walkability_score": p.Location.WalkabilityScore,
				"transit_score":     p.Location.TransitScore,
			},
			"market": {
				"occupancy_score": clamp(100 - p.MarketMetrics.VacancyRate*10),
			},
			"features": {
				"construction_quality": p.Features.ConstructionQuality,
				"space_efficiency":     p.Features.SpaceEfficiency,
			},
			"amenities": {
				"available_facilities": facilityScore,
			},
			"environmental": {
				"air_quality_index": p.Environmental.AirQualityIndex,
			},
			"financial": {
				"roi_score": clamp(p.Financial.EstimatedROI * 10),
			},
			"developer": {
				"success_rate": p.Developer.SuccessRate,
			},
			"tech": {
				"tech_readiness_score": p.TechFeatures.TechReadinessScore,
			},
			"risk": {
				"market_safety": clamp(100 - p.RiskAssessment.MarketRisk),
			},
			"economic": {
				"political_stability_index": p.EconomicIndicators.PoliticalStabilityIndex,
			},
		},
	}
}

// Document returns the property as a generic field map, the serializable
// form chart builders and the model collaborator consume. Dotted metric
// paths like "location.walkability_score" resolve against it.
func (p *Property) Document() map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{"id": p.ID}
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{"id": p.ID}
	}
	return doc
}
