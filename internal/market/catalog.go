package market

import "github.com/user/corporate-warfare/internal/types"

// manipulationCatalog is the static reference data for all seven
// manipulation actions. Costs, rates and impacts never change at runtime.
var manipulationCatalog = []types.ManipulationAction{
	{
		Type:          types.ManipSpreadRumor,
		Name:          "Spread Rumor",
		Cost:          50_000,
		SuccessRate:   0.70,
		DetectionRisk: 0.20,
		PriceImpact:   0.05,
		VolumeImpact:  0.10,
		DurationTicks: 30,
		RiskTier:      "low",
	},
	{
		Type:          types.ManipBuyWall,
		Name:          "Buy Wall",
		Cost:          120_000,
		SuccessRate:   0.60,
		DetectionRisk: 0.25,
		PriceImpact:   0.08,
		VolumeImpact:  0.25,
		DurationTicks: 40,
		RiskTier:      "medium",
	},
	{
		Type:          types.ManipWashTrading,
		Name:          "Wash Trading",
		Cost:          100_000,
		SuccessRate:   0.65,
		DetectionRisk: 0.40,
		PriceImpact:   0.0,
		VolumeImpact:  0.60,
		DurationTicks: 25,
		RiskTier:      "medium",
	},
	{
		Type:          types.ManipBearRaid,
		Name:          "Bear Raid",
		Cost:          150_000,
		SuccessRate:   0.55,
		DetectionRisk: 0.30,
		PriceImpact:   -0.12,
		VolumeImpact:  0.30,
		DurationTicks: 40,
		RiskTier:      "high",
	},
	{
		Type:          types.ManipPumpAndDump,
		Name:          "Pump and Dump",
		Cost:          200_000,
		SuccessRate:   0.60,
		DetectionRisk: 0.35,
		PriceImpact:   0.15,
		VolumeImpact:  0.40,
		DurationTicks: 50,
		RiskTier:      "high",
	},
	{
		Type:          types.ManipInsiderLeak,
		Name:          "Insider Leak",
		Cost:          250_000,
		SuccessRate:   0.80,
		DetectionRisk: 0.50,
		PriceImpact:   0.20,
		VolumeImpact:  0.20,
		DurationTicks: 60,
		RiskTier:      "severe",
	},
	{
		Type:          types.ManipCornerMarket,
		Name:          "Corner the Market",
		Cost:          400_000,
		SuccessRate:   0.45,
		DetectionRisk: 0.45,
		PriceImpact:   0.25,
		VolumeImpact:  0.50,
		DurationTicks: 80,
		RiskTier:      "severe",
	},
}

// Catalog returns the full manipulation action catalog
func Catalog() []types.ManipulationAction {
	out := make([]types.ManipulationAction, len(manipulationCatalog))
	copy(out, manipulationCatalog)
	return out
}

// ActionByType looks up a catalog entry
func ActionByType(t types.ManipulationType) (types.ManipulationAction, bool) {
	for _, a := range manipulationCatalog {
		if a.Type == t {
			return a, true
		}
	}
	return types.ManipulationAction{}, false
}
