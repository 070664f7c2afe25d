// Package market implements the stock market: a fixed instrument catalog,
// the manipulation action model, and the per-tick random walk.
// All functions operate on the MarketState inside the world snapshot and
// draw randomness only from the injected roller.
package market

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/types"
)

var (
	ErrUnknownSymbol = errors.New("unknown stock symbol")
	ErrUnknownAction = errors.New("unknown manipulation action")
)

const (
	// Prices never reach zero; clamp to a floor instead
	priceFloor = 0.01

	// Detected manipulations cost double, failed undetected ones half
	detectedCostFactor = 2.0
	failedCostFactor   = 0.5

	newsRingCap = 100
)

// Result is the economic outcome of one manipulation attempt
type Result struct {
	Success  bool  `json:"success"`
	Detected bool  `json:"detected"`
	Cost     int64 `json:"cost"`
}

// ExecuteManipulation draws one Bernoulli trial for success and an
// independent one for detection, applies the market effect on clean
// success, and returns the cost the initiator owes.
func ExecuteManipulation(st *types.MarketState, roller *prob.Roller, companyID, symbol string, actionType types.ManipulationType, tick int64) (Result, error) {
	stock, ok := st.Stocks[symbol]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	action, ok := ActionByType(actionType)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, actionType)
	}

	succeeded := roller.Chance(action.SuccessRate)
	detected := roller.Chance(action.DetectionRisk)

	if detected {
		// Regulators caught it: no market effect, penalty cost
		return Result{Success: false, Detected: true, Cost: int64(float64(action.Cost) * detectedCostFactor)}, nil
	}
	if !succeeded {
		// Fizzled quietly: partial loss only
		return Result{Success: false, Detected: false, Cost: int64(float64(action.Cost) * failedCostFactor)}, nil
	}

	applyEffect(st, stock, action, companyID, tick)
	return Result{Success: true, Detected: false, Cost: action.Cost}, nil
}

// applyEffect mutates the instrument and registers the active record
func applyEffect(st *types.MarketState, stock *types.Stock, action types.ManipulationAction, companyID string, tick int64) {
	stock.PreviousPrice = stock.Price
	stock.Price = clampPrice(stock.Price * (1 + action.PriceImpact))
	stock.Volume += int64(float64(stock.Volume) * action.VolumeImpact)
	trackDayRange(stock)

	st.Active = append(st.Active, types.ActiveManipulation{
		ID:        uuid.New().String(),
		Type:      action.Type,
		Symbol:    stock.Symbol,
		CompanyID: companyID,
		ExpiresAt: tick + action.DurationTicks,
	})

	// Rumor-style actions leave a synthetic headline behind
	if action.Type == types.ManipSpreadRumor || action.Type == types.ManipInsiderLeak {
		appendNews(st, types.NewsItem{
			ID:       uuid.New().String(),
			Symbol:   stock.Symbol,
			Headline: headlineFor(action, stock),
			Tick:     tick,
		})
	}
}

func headlineFor(action types.ManipulationAction, stock *types.Stock) string {
	if action.PriceImpact >= 0 {
		return fmt.Sprintf("Sources hint at a major breakthrough at %s", stock.Name)
	}
	return fmt.Sprintf("Leaked memo raises doubts about %s accounts", stock.Name)
}

func appendNews(st *types.MarketState, item types.NewsItem) {
	st.News = append(st.News, item)
	if len(st.News) > newsRingCap {
		st.News = st.News[len(st.News)-newsRingCap:]
	}
}

// UpdateMarket applies one small independent random walk to every
// instrument, bounded by its volatility, and expires stale manipulation
// records. Called once per tick by the simulation clock.
func UpdateMarket(st *types.MarketState, roller *prob.Roller, volatilityScale float64, tick int64) {
	for _, sym := range st.Symbols() {
		stock := st.Stocks[sym]
		stock.PreviousPrice = stock.Price

		step := roller.Walk(stock.Volatility * volatilityScale)
		stock.Price = clampPrice(stock.Price * (1 + step))

		// Volume drifts with the move, never below zero
		volumeStep := int64(float64(stock.Volume) * roller.Walk(0.05))
		stock.Volume += volumeStep
		if stock.Volume < 0 {
			stock.Volume = 0
		}

		trackDayRange(stock)
	}

	// Drop expired manipulation records
	kept := st.Active[:0]
	for _, m := range st.Active {
		if m.ExpiresAt > tick {
			kept = append(kept, m)
		}
	}
	st.Active = kept
}

func trackDayRange(stock *types.Stock) {
	if stock.DayOpen == 0 {
		stock.DayOpen = stock.Price
	}
	if stock.Price > stock.DayHigh {
		stock.DayHigh = stock.Price
	}
	if stock.DayLow == 0 || stock.Price < stock.DayLow {
		stock.DayLow = stock.Price
	}
}

func clampPrice(p float64) float64 {
	if p < priceFloor {
		return priceFloor
	}
	return p
}

// OrderBook generates illustrative depth around the current price.
// Display data only; no invariant beyond non-negative price/quantity.
func OrderBook(stock *types.Stock, roller *prob.Roller, depth int) []types.OrderBookEntry {
	entries := make([]types.OrderBookEntry, 0, depth*2)
	step := stock.Price * 0.002
	for i := 1; i <= depth; i++ {
		bid := clampPrice(stock.Price - float64(i)*step)
		ask := stock.Price + float64(i)*step
		entries = append(entries,
			types.OrderBookEntry{Price: bid, Quantity: int64(roller.Intn(900) + 100), Side: "bid"},
			types.OrderBookEntry{Price: ask, Quantity: int64(roller.Intn(900) + 100), Side: "ask"},
		)
	}
	return entries
}
