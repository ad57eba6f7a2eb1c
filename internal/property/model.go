// Package property defines the typed property record accepted at the API
// boundary and its conversion into the category metrics the scoring
// aggregator consumes.
package property

import (
	"fmt"
	"strings"
	"time"
)

// Location describes where the property sits and how reachable it is.
type Location struct {
	City             string             `json:"city" binding:"required"`
	Neighborhood     string             `json:"neighborhood" binding:"required"`
	Coordinates      map[string]float64 `json:"coordinates,omitempty"`
	WalkabilityScore float64            `json:"walkability_score"`
	TransitScore     float64            `json:"transit_score"`
	ParkingAvailable bool               `json:"parking_available"`
}

// MarketMetrics captures local market conditions.
type MarketMetrics struct {
	VacancyRate      float64 `json:"vacancy_rate"`
	RentalYield      float64 `json:"rental_yield"`
	PriceTrend       float64 `json:"price_trend"`
	CompetitionLevel string  `json:"competition_level,omitempty"`
}

// Features describes the physical property itself.
type Features struct {
	PropertyType        string  `json:"property_type" binding:"required"`
	SizeSqft            float64 `json:"size_sqft"`
	NumBedrooms         int     `json:"num_bedrooms"`
	NumBathrooms        float64 `json:"num_bathrooms"`
	YearBuilt           int     `json:"year_built"`
	ConstructionQuality float64 `json:"construction_quality"`
	SpaceEfficiency     float64 `json:"space_efficiency"`
}

// Amenities lists what the building offers beyond the unit.
type Amenities struct {
	GreenCertification  bool     `json:"green_certification"`
	OnsiteManagement    bool     `json:"onsite_management"`
	SecurityFeatures    []string `json:"security_features,omitempty"`
	AvailableFacilities []string `json:"available_facilities,omitempty"`
}

// Environmental holds livability measurements around the property.
type Environmental struct {
	AirQualityIndex        float64 `json:"air_quality_index"`
	NoiseLevelDB           float64 `json:"noise_level_db"`
	GreenSpaceProximity    float64 `json:"green_space_proximity"`
	EnergyEfficiencyRating string  `json:"energy_efficiency_rating,omitempty"`
}

// Financial holds purchase and operating figures.
type Financial struct {
	PurchasePrice         float64  `json:"purchase_price"`
	MonthlyOperatingCosts float64  `json:"monthly_operating_costs"`
	TaxRate               float64  `json:"tax_rate"`
	EstimatedROI          float64  `json:"estimated_roi"`
	AvailableFinancing    []string `json:"available_financing,omitempty"`
}

// Developer is the builder's track record.
type Developer struct {
	Name                     string  `json:"name"`
	YearsActive              int     `json:"years_active"`
	CompletedProjects        int     `json:"completed_projects"`
	SuccessRate              float64 `json:"success_rate"`
	FinancialStabilityRating string  `json:"financial_stability_rating,omitempty"`
}

// TechFeatures covers smart-home and connectivity readiness.
type TechFeatures struct {
	SmartHomeFeatures  []string `json:"smart_home_features,omitempty"`
	InternetSpeed      float64  `json:"internet_speed"`
	AutomationSystems  []string `json:"automation_systems,omitempty"`
	TechReadinessScore float64  `json:"tech_readiness_score"`
}

// RiskAssessment holds per-dimension risk estimates, 0 best to 100 worst.
type RiskAssessment struct {
	MarketRisk        float64 `json:"market_risk"`
	FinancialRisk     float64 `json:"financial_risk"`
	RegulatoryRisk    float64 `json:"regulatory_risk"`
	EnvironmentalRisk float64 `json:"environmental_risk"`
}

// EconomicIndicators describes the macro environment.
type EconomicIndicators struct {
	GDPGrowth               float64 `json:"gdp_growth"`
	EmploymentRate          float64 `json:"employment_rate"`
	PopulationGrowth        float64 `json:"population_growth"`
	PoliticalStabilityIndex float64 `json:"political_stability_index"`
}

// Property is one property's complete snapshot. All category groups are
// declared up front; range violations are rejected by Validate before any
// scoring happens.
type Property struct {
	ID        string    `json:"id" binding:"required"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	Location           Location           `json:"location"`
	MarketMetrics      MarketMetrics      `json:"market_metrics"`
	Features           Features           `json:"features"`
	Amenities          Amenities          `json:"amenities"`
	Environmental      Environmental      `json:"environmental"`
	Financial          Financial          `json:"financial"`
	Developer          Developer          `json:"developer"`
	TechFeatures       TechFeatures       `json:"tech_features"`
	RiskAssessment     RiskAssessment     `json:"risk_assessment"`
	EconomicIndicators EconomicIndicators `json:"economic_indicators"`
}

type fieldError struct {
	field string
	msg   string
}

// Validate checks required fields and numeric ranges. It reports every
// violation at once rather than stopping at the first.
func (p *Property) Validate() error {
	var errs []fieldError

	requireRange := func(field string, v, lo, hi float64) {
		if v < lo || v > hi {
			errs = append(errs, fieldError{field, fmt.Sprintf("must be between %v and %v, got %v", lo, hi, v)})
		}
	}
	requireNonNegative := func(field string, v float64) {
		if v < 0 {
			errs = append(errs, fieldError{field, fmt.Sprintf("must not be negative, got %v", v)})
		}
	}

	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, fieldError{"id", "is required"})
	}
	if strings.TrimSpace(p.Location.City) == "" {
		errs = append(errs, fieldError{"location.city", "is required"})
	}
	if strings.TrimSpace(p.Location.Neighborhood) == "" {
		errs = append(errs, fieldError{"location.neighborhood", "is required"})
	}

	requireRange("location.walkability_score", p.Location.WalkabilityScore, 0, 100)
	requireRange("location.transit_score", p.Location.TransitScore, 0, 100)
	requireRange("market_metrics.vacancy_rate", p.MarketMetrics.VacancyRate, 0, 100)
	requireNonNegative("market_metrics.rental_yield", p.MarketMetrics.RentalYield)
	requireRange("features.construction_quality", p.Features.ConstructionQuality, 0, 100)
	requireRange("features.space_efficiency", p.Features.SpaceEfficiency, 0, 100)
	requireRange("environmental.air_quality_index", p.Environmental.AirQualityIndex, 0, 100)
	requireRange("environmental.noise_level_db", p.Environmental.NoiseLevelDB, 0, 120)
	requireRange("environmental.green_space_proximity", p.Environmental.GreenSpaceProximity, 0, 1)
	requireNonNegative("financial.purchase_price", p.Financial.PurchasePrice)
	requireNonNegative("financial.monthly_operating_costs", p.Financial.MonthlyOperatingCosts)
	requireNonNegative("financial.tax_rate", p.Financial.TaxRate)
	requireNonNegative("developer.years_active", float64(p.Developer.YearsActive))
	requireNonNegative("developer.completed_projects", float64(p.Developer.CompletedProjects))
	requireRange("developer.success_rate", p.Developer.SuccessRate, 0, 100)
	requireNonNegative("tech_features.internet_speed", p.TechFeatures.InternetSpeed)
	requireRange("tech_features.tech_readiness_score", p.TechFeatures.TechReadinessScore, 0, 100)
	requireRange("risk_assessment.market_risk", p.RiskAssessment.MarketRisk, 0, 100)
	requireRange("risk_assessment.financial_risk", p.RiskAssessment.FinancialRisk, 0, 100)
	requireRange("risk_assessment.regulatory_risk", p.RiskAssessment.RegulatoryRisk, 0, 100)
	requireRange("risk_assessment.environmental_risk", p.RiskAssessment.EnvironmentalRisk, 0, 100)
	requireRange("economic_indicators.employment_rate", p.EconomicIndicators.EmploymentRate, 0, 100)
	requireRange("economic_indicators.political_stability_index", p.EconomicIndicators.PoliticalStabilityIndex, 0, 100)

	if len(errs) == 0 {
		return nil
	}

	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.field + " " + e.msg
	}
	return &ValidationError{Fields: errs, message: strings.Join(parts, "; ")}
}

// ValidationError reports every field violation found in one pass.
type ValidationError struct {
	Fields  []fieldError
	message string
}

func (e *ValidationError) Error() string {
	return "invalid property: " + e.message
}

// FieldMessages returns field name to violation message, for structured
// error responses.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.field] = f.msg
	}
	return out
}
