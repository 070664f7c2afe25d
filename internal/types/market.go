package types

import (
	"math"
	"sort"
)

// Stock is one tradable instrument on the market
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PreviousPrice float64 `json:"previous_price"`
	Volume        int64   `json:"volume"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	DayOpen       float64 `json:"day_open"`
	Volatility    float64 `json:"volatility"`
	Beta          float64 `json:"beta"`
}

// Change returns the absolute price move since the previous tick.
// Always derived, never stored.
func (s *Stock) Change() float64 {
	return s.Price - s.PreviousPrice
}

// ChangePercent returns the relative price move since the previous tick
func (s *Stock) ChangePercent() float64 {
	if s.PreviousPrice == 0 {
		return 0
	}
	return (s.Price - s.PreviousPrice) / s.PreviousPrice * 100
}

// ManipulationType enumerates the seven catalog manipulation actions
type ManipulationType string

const (
	ManipSpreadRumor   ManipulationType = "spread_rumor"
	ManipPumpAndDump   ManipulationType = "pump_and_dump"
	ManipBearRaid      ManipulationType = "bear_raid"
	ManipWashTrading   ManipulationType = "wash_trading"
	ManipInsiderLeak   ManipulationType = "insider_leak"
	ManipBuyWall       ManipulationType = "buy_wall"
	ManipCornerMarket  ManipulationType = "corner_market"
)

// ManipulationAction is one entry of the static manipulation catalog.
// Values are immutable reference data.
type ManipulationAction struct {
	Type          ManipulationType `json:"type"`
	Name          string           `json:"name"`
	Cost          int64            `json:"cost"`
	SuccessRate   float64          `json:"success_rate"`
	DetectionRisk float64          `json:"detection_risk"`
	PriceImpact   float64          `json:"price_impact"`
	VolumeImpact  float64          `json:"volume_impact"`
	DurationTicks int64            `json:"duration_ticks"`
	RiskTier      string           `json:"risk_tier"`
}

// ActiveManipulation records an in-flight market manipulation until expiry
type ActiveManipulation struct {
	ID        string           `json:"id"`
	Type      ManipulationType `json:"type"`
	Symbol    string           `json:"symbol"`
	CompanyID string           `json:"company_id"`
	ExpiresAt int64            `json:"expires_at"`
}

// NewsItem is a synthetic headline produced by rumor-style manipulations
type NewsItem struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Headline string `json:"headline"`
	Tick     int64  `json:"tick"`
}

// OrderBookEntry is illustrative display depth derived from current price
type OrderBookEntry struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Side     string  `json:"side"`
}

// MarketState holds every instrument plus manipulation bookkeeping.
// It lives inside the world snapshot and shares its single-writer rule.
type MarketState struct {
	Stocks map[string]*Stock    `json:"stocks"`
	Active []ActiveManipulation `json:"active_manipulations"`
	News   []NewsItem           `json:"news"`
}

// NewMarketState creates an empty market
func NewMarketState() *MarketState {
	return &MarketState{
		Stocks: make(map[string]*Stock),
	}
}

// Clone deep-copies the market state
func (m *MarketState) Clone() *MarketState {
	clone := &MarketState{
		Stocks: make(map[string]*Stock, len(m.Stocks)),
		Active: append([]ActiveManipulation(nil), m.Active...),
		News:   append([]NewsItem(nil), m.News...),
	}
	for sym, s := range m.Stocks {
		ss := *s
		clone.Stocks[sym] = &ss
	}
	return clone
}

// Symbols returns all instrument symbols in stable order
func (m *MarketState) Symbols() []string {
	symbols := make([]string, 0, len(m.Stocks))
	for sym := range m.Stocks {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

func sqrt(v float64) float64 {
	return math.Sqrt(v)
}

func sortBuildings(buildings []*Building) {
	sort.Slice(buildings, func(i, j int) bool {
		if buildings[i].PurchaseCost() != buildings[j].PurchaseCost() {
			return buildings[i].PurchaseCost() < buildings[j].PurchaseCost()
		}
		return buildings[i].ID < buildings[j].ID
	})
}
