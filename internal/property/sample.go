package property

import "time"

// Sample returns a fully populated, valid property. It mirrors the demo
// listing the interactive form is seeded with and doubles as a fixture for
// tests across packages.
func Sample(id, neighborhood string) Property {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Property{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Location: Location{
			City:             "San Francisco",
			Neighborhood:     neighborhood,
			Coordinates:      map[string]float64{"lat": 37.7749, "lng": -122.4194},
			WalkabilityScore: 85,
			TransitScore:     90,
			ParkingAvailable: true,
		},
		MarketMetrics: MarketMetrics{
			VacancyRate:      5.2,
			RentalYield:      4.8,
			PriceTrend:       12.5,
			CompetitionLevel: "Medium",
		},
		Features: Features{
			PropertyType:        "Apartment",
			SizeSqft:            1200,
			NumBedrooms:         2,
			NumBathrooms:        2,
			YearBuilt:           2015,
			ConstructionQuality: 85,
			SpaceEfficiency:     90,
		},
		Amenities: Amenities{
			GreenCertification:  true,
			OnsiteManagement:    true,
			SecurityFeatures:    []string{"24/7 Security", "CCTV"},
			AvailableFacilities: []string{"Gym", "Pool", "Parking"},
		},
		Environmental: Environmental{
			AirQualityIndex:        75,
			NoiseLevelDB:           45,
			GreenSpaceProximity:    0.5,
			EnergyEfficiencyRating: "A",
		},
		Financial: Financial{
			PurchasePrice:         850000,
			MonthlyOperatingCosts: 2500,
			TaxRate:               1.2,
			EstimatedROI:          6.5,
			AvailableFinancing:    []string{"Conventional", "FHA"},
		},
		Developer: Developer{
			Name:                     "Quality Builders Inc.",
			YearsActive:              25,
			CompletedProjects:        50,
			SuccessRate:              95,
			FinancialStabilityRating: "A+",
		},
		TechFeatures: TechFeatures{
			SmartHomeFeatures:  []string{"Smart Thermostat"},
			InternetSpeed:      1000,
			AutomationSystems:  []string{"HVAC", "Security"},
			TechReadinessScore: 90,
		},
		RiskAssessment: RiskAssessment{
			MarketRisk:        25,
			FinancialRisk:     20,
			RegulatoryRisk:    15,
			EnvironmentalRisk: 10,
		},
		EconomicIndicators: EconomicIndicators{
			GDPGrowth:               3.5,
			EmploymentRate:          95,
			PopulationGrowth:        2.1,
			PoliticalStabilityIndex: 85,
		},
	}
}
