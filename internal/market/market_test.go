package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/types"
)

// scriptedSource replays a fixed sequence of uniform draws
type scriptedSource struct {
	values []float64
	pos    int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func (s *scriptedSource) Intn(n int) int       { return n / 2 }
func (s *scriptedSource) NormFloat64() float64 { return 0 }

func testMarket() *types.MarketState {
	st := types.NewMarketState()
	st.Stocks["APEX"] = &types.Stock{
		Symbol: "APEX", Name: "Apex Holdings",
		Price: 100, PreviousPrice: 100, Volume: 10_000, Volatility: 0.01,
	}
	return st
}

func TestCatalogCovered(t *testing.T) {
	catalog := Catalog()
	assert.Len(t, catalog, 7)

	seen := map[types.ManipulationType]bool{}
	for _, action := range catalog {
		seen[action.Type] = true
		assert.Positive(t, action.Cost)
		assert.Greater(t, action.SuccessRate, 0.0)
		assert.LessOrEqual(t, action.SuccessRate, 1.0)
		assert.Greater(t, action.DetectionRisk, 0.0)
		assert.Less(t, action.DetectionRisk, 1.0)
	}
	assert.True(t, seen[types.ManipSpreadRumor])
	assert.True(t, seen[types.ManipCornerMarket])
}

func TestExecuteManipulationRejectsUnknowns(t *testing.T) {
	st := testMarket()
	roller := prob.NewRoller(42)

	_, err := ExecuteManipulation(st, roller, "c1", "GHOST", types.ManipSpreadRumor, 1)
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = ExecuteManipulation(st, roller, "c1", "APEX", "mind_control", 1)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestExecuteManipulationDetected(t *testing.T) {
	// Success roll misses, detection roll hits
	st := testMarket()
	roller := prob.NewRollerFrom(&scriptedSource{values: []float64{0.99, 0.0}})

	result, err := ExecuteManipulation(st, roller, "c1", "APEX", types.ManipSpreadRumor, 1)
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.Detected)

	// Detected costs double, market untouched
	action, _ := ActionByType(types.ManipSpreadRumor)
	assert.Equal(t, action.Cost*2, result.Cost)
	assert.Equal(t, 100.0, st.Stocks["APEX"].Price)
	assert.Empty(t, st.Active)
}

func TestExecuteManipulationFailedUndetected(t *testing.T) {
	// Both rolls miss
	st := testMarket()
	roller := prob.NewRollerFrom(&scriptedSource{values: []float64{0.99, 0.99}})

	result, err := ExecuteManipulation(st, roller, "c1", "APEX", types.ManipSpreadRumor, 1)
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.Detected)

	// Quiet failure costs half, market untouched
	action, _ := ActionByType(types.ManipSpreadRumor)
	assert.Equal(t, action.Cost/2, result.Cost)
	assert.Equal(t, 100.0, st.Stocks["APEX"].Price)
}

func TestExecuteManipulationSuccess(t *testing.T) {
	// Success roll hits, detection roll misses
	st := testMarket()
	roller := prob.NewRollerFrom(&scriptedSource{values: []float64{0.0, 0.99}})

	result, err := ExecuteManipulation(st, roller, "c1", "APEX", types.ManipSpreadRumor, 5)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Detected)

	action, _ := ActionByType(types.ManipSpreadRumor)
	assert.Equal(t, action.Cost, result.Cost)

	// Price moved by the catalog impact and an active record was registered
	stock := st.Stocks["APEX"]
	assert.InDelta(t, 100*(1+action.PriceImpact), stock.Price, 1e-9)
	assert.Len(t, st.Active, 1)
	assert.Equal(t, "c1", st.Active[0].CompanyID)
	assert.Equal(t, int64(5)+action.DurationTicks, st.Active[0].ExpiresAt)

	// Rumor-style actions leave a headline
	assert.Len(t, st.News, 1)
	assert.Equal(t, "APEX", st.News[0].Symbol)
}

func TestExecuteManipulationOutcomeRatesConverge(t *testing.T) {
	// Over many trials the empirical rates approach the catalog numbers
	roller := prob.NewRoller(7)
	action, _ := ActionByType(types.ManipSpreadRumor)

	const trials = 10_000
	successes, detections := 0, 0
	for i := 0; i < trials; i++ {
		st := testMarket()
		result, err := ExecuteManipulation(st, roller, "c1", "APEX", types.ManipSpreadRumor, 1)
		assert.NoError(t, err)
		if result.Success {
			successes++
		}
		if result.Detected {
			detections++
		}
	}

	// Detection preempts success, so observed success is rate x (1 - risk)
	expectedSuccess := action.SuccessRate * (1 - action.DetectionRisk)
	assert.InDelta(t, expectedSuccess, float64(successes)/trials, 0.03)
	assert.InDelta(t, action.DetectionRisk, float64(detections)/trials, 0.03)
}

func TestUpdateMarketWalksPrices(t *testing.T) {
	// Setup
	st := testMarket()
	roller := prob.NewRoller(42)

	for tick := int64(1); tick <= 500; tick++ {
		UpdateMarket(st, roller, 1.0, tick)
		stock := st.Stocks["APEX"]
		assert.Greater(t, stock.Price, 0.0)
		assert.GreaterOrEqual(t, stock.Volume, int64(0))
		assert.GreaterOrEqual(t, stock.DayHigh, stock.DayLow)
	}
}

func TestUpdateMarketNeverBelowFloor(t *testing.T) {
	// A price already at the floor cannot go lower
	st := testMarket()
	st.Stocks["APEX"].Price = priceFloor
	roller := prob.NewRoller(42)

	for tick := int64(1); tick <= 100; tick++ {
		UpdateMarket(st, roller, 10.0, tick)
		assert.GreaterOrEqual(t, st.Stocks["APEX"].Price, priceFloor)
	}
}

func TestUpdateMarketExpiresManipulations(t *testing.T) {
	// Setup
	st := testMarket()
	roller := prob.NewRoller(42)
	st.Active = []types.ActiveManipulation{
		{ID: "m1", Symbol: "APEX", ExpiresAt: 10},
		{ID: "m2", Symbol: "APEX", ExpiresAt: 20},
	}

	UpdateMarket(st, roller, 1.0, 10)
	assert.Len(t, st.Active, 1)
	assert.Equal(t, "m2", st.Active[0].ID)

	UpdateMarket(st, roller, 1.0, 20)
	assert.Empty(t, st.Active)
}

func TestOrderBookDepth(t *testing.T) {
	// Setup
	st := testMarket()
	roller := prob.NewRoller(42)

	entries := OrderBook(st.Stocks["APEX"], roller, 5)
	assert.Len(t, entries, 10)
	for _, entry := range entries {
		assert.Greater(t, entry.Price, 0.0)
		assert.Positive(t, entry.Quantity)
		assert.Contains(t, []string{"bid", "ask"}, entry.Side)
	}
}
