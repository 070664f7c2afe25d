// Package competition implements the rule engine that watches successive
// world snapshots: delta events, elimination, victory, hostile takeovers
// and the aggregate analytics derived from them.
package competition

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/corporate-warfare/internal/types"
)

const (
	// Event log is a bounded ring; oldest entries are dropped
	eventRingCap = 1000

	// Asset-change magnitudes kept for the risk-level score
	deltaWindow = 128

	// Window of wall time scored by the intensity metric
	intensityWindow = 30 * time.Second
)

// Config carries the thresholds the engine enforces
type Config struct {
	// Capital level that triggers a low-asset warning for active companies
	EliminationThreshold int64

	// Share of total active capital that ends the game (0-1)
	VictoryShare float64

	// Ticks before low-asset warnings start firing
	GracePeriodTicks int64
}

// TakeoverResult reports the outcome of a hostile takeover attempt
type TakeoverResult struct {
	Success bool
	Cost    int64
	Message string
}

// Engine detects asset deltas between snapshots and applies the
// elimination and victory rules
type Engine struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.RWMutex
	events []types.CompetitionEvent
	deltas []float64
}

// NewEngine creates a competition engine
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// RunChecks executes the full per-tick pass: delta detection, the
// elimination pass, then the victory check. No-op once the game ended.
func (e *Engine) RunChecks(prev, curr *types.WorldSnapshot, now time.Time) {
	if curr.Status.Ended() {
		return
	}
	e.detectDeltas(prev, curr, now)
	e.RunElimination(curr, now)
	e.CheckVictory(curr, now)
}

// detectDeltas compares company and building fields between snapshots and
// synthesizes asset_change and building_acquired events
func (e *Engine) detectDeltas(prev, curr *types.WorldSnapshot, now time.Time) {
	if prev == nil {
		return
	}
	for id, company := range curr.Companies {
		before, ok := prev.Companies[id]
		if !ok {
			continue
		}
		if diff := company.Capital - before.Capital; diff != 0 {
			e.append(types.CompetitionEvent{
				ID:          uuid.New().String(),
				Timestamp:   now,
				Kind:        types.EventAssetChange,
				CompanyID:   id,
				Description: fmt.Sprintf("%s capital moved by %d", company.Name, diff),
				Impact:      diff,
			})
			e.recordDelta(math.Abs(float64(diff)))
		}

		// Low-asset warning only after the grace period has elapsed;
		// the victory check below is deliberately not gated this way.
		if company.Status == types.CompanyActive &&
			company.Capital < e.cfg.EliminationThreshold &&
			curr.Turn > e.cfg.GracePeriodTicks {
			e.append(types.CompetitionEvent{
				ID:          uuid.New().String(),
				Timestamp:   now,
				Kind:        types.EventAssetChange,
				CompanyID:   id,
				Description: fmt.Sprintf("%s is close to bankruptcy", company.Name),
				Impact:      company.Capital,
			})
		}
	}

	for id, building := range curr.Buildings {
		before, ok := prev.Buildings[id]
		if !ok || building.OwnerID == before.OwnerID || building.OwnerID == "" {
			continue
		}
		e.append(types.CompetitionEvent{
			ID:          uuid.New().String(),
			Timestamp:   now,
			Kind:        types.EventBuildingAcquired,
			CompanyID:   building.OwnerID,
			TargetID:    before.OwnerID,
			Description: fmt.Sprintf("%s changed hands", building.Name),
			Impact:      building.PurchaseCost(),
		})
	}
}

// RunElimination transitions every active company with non-positive
// capital to bankrupt and releases its buildings. Idempotent: re-running
// it over an already-bankrupt company changes nothing.
func (e *Engine) RunElimination(snap *types.WorldSnapshot, now time.Time) {
	for _, company := range snap.Companies {
		if company.Status != types.CompanyActive || company.Capital > 0 {
			continue
		}

		company.Status = types.CompanyBankrupt
		company.Capital = 0
		for _, buildingID := range company.OwnedBuildings {
			if b, ok := snap.Buildings[buildingID]; ok {
				b.OwnerID = ""
			}
		}
		company.OwnedBuildings = nil

		// A bankrupt company's field agents stand down
		for _, agent := range snap.Agents {
			if agent.CompanyID == company.ID {
				agent.ClearTask()
			}
		}

		e.logger.Info("company eliminated",
			zap.String("company_id", company.ID),
			zap.String("name", company.Name),
			zap.Int64("turn", snap.Turn))

		e.append(types.CompetitionEvent{
			ID:          uuid.New().String(),
			Timestamp:   now,
			Kind:        types.EventCompanyEliminated,
			CompanyID:   company.ID,
			Description: fmt.Sprintf("%s went bankrupt", company.Name),
		})
	}
}

// CheckVictory evaluates the three end conditions and transitions game
// status exactly once. Safe to call repeatedly on an ended snapshot.
func (e *Engine) CheckVictory(snap *types.WorldSnapshot, now time.Time) bool {
	if snap.Status.Ended() {
		return true
	}

	active := snap.ActiveCompanies()
	total := snap.TotalActiveCapital()

	// (a) last company standing
	if len(active) == 1 {
		e.endGame(snap, active[0], "eliminated all competitors", now)
		return true
	}

	// (b) dominant capital share
	if total > 0 {
		for _, company := range active {
			share := float64(company.Capital) / float64(total)
			if share >= e.cfg.VictoryShare {
				reason := fmt.Sprintf("controlled %.1f%% of market assets", share*100)
				e.endGame(snap, company, reason, now)
				return true
			}
		}
	}

	// (c) player out of the game
	player := snap.PlayerCompany()
	if player != nil && player.Status == types.CompanyBankrupt {
		var richest *types.Company
		for _, company := range active {
			if richest == nil || company.Capital > richest.Capital {
				richest = company
			}
		}
		e.endGame(snap, richest, "player bankrupt", now)
		return true
	}

	return false
}

func (e *Engine) endGame(snap *types.WorldSnapshot, winner *types.Company, reason string, now time.Time) {
	snap.VictoryReason = reason
	if winner != nil {
		snap.WinnerID = winner.ID
	}
	if winner != nil && winner.PlayerControlled {
		snap.Status = types.GameVictory
	} else {
		snap.Status = types.GameDefeat
	}

	e.logger.Info("game over",
		zap.String("winner_id", snap.WinnerID),
		zap.String("reason", reason),
		zap.Int64("turn", snap.Turn))
}

// ExecuteTakeover runs a hostile takeover: the attacker pays
// floor(target.capital x 1.5), absorbs every building the target held,
// and the target is eliminated outright. Rejected without any state
// change when the attacker cannot cover the cost.
func (e *Engine) ExecuteTakeover(snap *types.WorldSnapshot, attackerID, targetID string, now time.Time) TakeoverResult {
	attacker, ok := snap.Companies[attackerID]
	if !ok || attacker.Status != types.CompanyActive {
		return TakeoverResult{Message: "attacker not active"}
	}
	target, ok := snap.Companies[targetID]
	if !ok || target.Status != types.CompanyActive || target.ID == attacker.ID {
		return TakeoverResult{Message: "no valid takeover target"}
	}

	cost := int64(math.Floor(float64(target.Capital) * 1.5))
	if attacker.Capital < cost {
		e.append(types.CompetitionEvent{
			ID:          uuid.New().String(),
			Timestamp:   now,
			Kind:        types.EventHostileTakeover,
			CompanyID:   attackerID,
			TargetID:    targetID,
			Description: fmt.Sprintf("%s could not finance a takeover of %s", attacker.Name, target.Name),
		})
		return TakeoverResult{Cost: cost, Message: "insufficient capital for takeover"}
	}

	attacker.Capital -= cost
	for _, buildingID := range target.OwnedBuildings {
		if b, ok := snap.Buildings[buildingID]; ok {
			b.OwnerID = attacker.ID
		}
		attacker.AddBuilding(buildingID)
	}
	target.OwnedBuildings = nil
	target.Capital = 0
	target.Status = types.CompanyBankrupt

	for _, agent := range snap.Agents {
		if agent.CompanyID == target.ID {
			agent.ClearTask()
		}
	}

	e.append(types.CompetitionEvent{
		ID:          uuid.New().String(),
		Timestamp:   now,
		Kind:        types.EventHostileTakeover,
		CompanyID:   attackerID,
		TargetID:    targetID,
		Description: fmt.Sprintf("%s absorbed %s in a hostile takeover", attacker.Name, target.Name),
		Impact:      cost,
	})
	return TakeoverResult{Success: true, Cost: cost, Message: fmt.Sprintf("%s absorbed %s", attacker.Name, target.Name)}
}

// RecordManipulation logs a market manipulation outcome into the
// competition event stream
func (e *Engine) RecordManipulation(companyID, symbol string, success bool, cost int64, now time.Time) {
	verb := "manipulated"
	if !success {
		verb = "failed to manipulate"
	}
	e.append(types.CompetitionEvent{
		ID:          uuid.New().String(),
		Timestamp:   now,
		Kind:        types.EventMarketManipulation,
		CompanyID:   companyID,
		Description: fmt.Sprintf("%s %s %s", companyID, verb, symbol),
		Impact:      -cost,
	})
	e.recordDelta(math.Abs(float64(cost)))
}

// Events returns a copy of the current event ring, oldest first
func (e *Engine) Events() []types.CompetitionEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.CompetitionEvent, len(e.events))
	copy(out, e.events)
	return out
}

func (e *Engine) append(ev types.CompetitionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	if len(e.events) > eventRingCap {
		e.events = e.events[len(e.events)-eventRingCap:]
	}
}

func (e *Engine) recordDelta(magnitude float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deltas = append(e.deltas, magnitude)
	if len(e.deltas) > deltaWindow {
		e.deltas = e.deltas[len(e.deltas)-deltaWindow:]
	}
}
