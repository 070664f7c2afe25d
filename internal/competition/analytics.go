package competition

import (
	"math"
	"time"

	"github.com/user/corporate-warfare/internal/types"
)

// Scaling constants for the 0-100 analytics scores. Fifty events inside
// the intensity window pin the score; the risk score saturates at a
// 200,000-unit standard deviation of recent asset swings.
const (
	intensityFullScale = 50
	riskFullScaleStd   = 200_000
)

// ComputeAnalytics derives the per-tick aggregate view: market share and
// building control percentages, the rolling competition intensity, and
// the risk level from recent asset-change variance.
func (e *Engine) ComputeAnalytics(snap *types.WorldSnapshot, now time.Time) types.Analytics {
	analytics := types.Analytics{
		MarketShare:     make(map[string]float64),
		BuildingControl: make(map[string]float64),
	}

	total := snap.TotalActiveCapital()
	for _, company := range snap.Companies {
		if company.Status != types.CompanyActive {
			continue
		}
		if total > 0 {
			analytics.MarketShare[company.ID] = float64(company.Capital) / float64(total) * 100
		}
		if len(snap.Buildings) > 0 {
			analytics.BuildingControl[company.ID] = float64(len(company.OwnedBuildings)) / float64(len(snap.Buildings)) * 100
		}
	}

	analytics.Intensity = e.intensity(now)
	analytics.RiskLevel = e.riskLevel()
	return analytics
}

// intensity counts events inside the rolling window, normalized 0-100
func (e *Engine) intensity(now time.Time) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cutoff := now.Add(-intensityWindow)
	count := 0
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Timestamp.Before(cutoff) {
			break
		}
		count++
	}
	return math.Min(100, float64(count)/intensityFullScale*100)
}

// riskLevel maps the standard deviation of recent asset-change
// magnitudes onto 0-100
func (e *Engine) riskLevel() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.deltas) < 2 {
		return 0
	}
	var sum float64
	for _, d := range e.deltas {
		sum += d
	}
	mean := sum / float64(len(e.deltas))

	var variance float64
	for _, d := range e.deltas {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(e.deltas))

	return math.Min(100, math.Sqrt(variance)/riskFullScaleStd*100)
}
