// Package ai produces one structured decision per AI company per
// cooldown round, delegating to an external inference backend when one
// is configured and to a deterministic heuristic otherwise.
package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/corporate-warfare/internal/interfaces"
	"github.com/user/corporate-warfare/internal/market"
	"github.com/user/corporate-warfare/internal/types"
)

const (
	historyCap     = 20
	defaultTimeout = 10 * time.Second

	systemPrompt = "You are the strategy officer of a company in a cut-throat " +
		"business simulation. Reply with exactly these lines: 'action: <one of " +
		"purchase_building|recruit_employee|stock_manipulation|attack|intelligence|wait>', " +
		"optionally 'target: <id>', optionally 'manipulation: <type>', " +
		"'reasoning: <short text>', 'priority: <1-10>'."
)

// Engine builds decision contexts and turns inference replies into
// structured decisions
type Engine struct {
	client         interfaces.InferenceClient
	logger         *zap.Logger
	timeout        time.Duration
	aggressiveness float64

	mu      sync.Mutex
	history map[string][]types.AIDecision
}

// NewEngine creates a decision engine. A nil client means every decision
// comes from the fallback policy.
func NewEngine(client interfaces.InferenceClient, timeout time.Duration, aggressiveness float64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Engine{
		client:         client,
		logger:         logger,
		timeout:        timeout,
		aggressiveness: aggressiveness,
		history:        make(map[string][]types.AIDecision),
	}
}

// MakeDecision produces one decision for the company against the given
// snapshot. It never fails: inference errors, timeouts and unparseable
// replies all degrade to the deterministic fallback.
func (e *Engine) MakeDecision(ctx context.Context, company *types.Company, snap *types.WorldSnapshot) types.AIDecision {
	decision, err := e.infer(ctx, company, snap)
	if err != nil {
		e.logger.Debug("inference unavailable, using fallback",
			zap.String("company_id", company.ID),
			zap.Error(err))
		decision = Fallback(company, snap.AvailableBuildings())
	}

	decision.ID = uuid.New().String()
	decision.CompanyID = company.ID
	decision.CreatedAt = time.Now()
	e.record(company.ID, decision)
	return decision
}

func (e *Engine) infer(ctx context.Context, company *types.Company, snap *types.WorldSnapshot) (types.AIDecision, error) {
	if e.client == nil {
		return types.AIDecision{}, fmt.Errorf("no inference client configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.client.Complete(ctx, systemPrompt, e.BuildContext(company, snap))
	if err != nil {
		return types.AIDecision{}, fmt.Errorf("inference request: %w", err)
	}

	decision, err := ParseDecision(reply)
	if err != nil {
		return types.AIDecision{}, fmt.Errorf("parse reply: %w", err)
	}
	decision.EstimatedCost = estimateCost(decision, snap)
	return decision, nil
}

// BuildContext renders the bounded textual game context sent to the
// inference backend: own stats, competitors, purchasable buildings and
// current instrument prices.
func (e *Engine) BuildContext(company *types.Company, snap *types.WorldSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "turn: %d\n", snap.Turn)
	fmt.Fprintf(&b, "you: %s capital=%d employees=%d buildings=%d aggressiveness=%.2f\n",
		company.Name, company.Capital, company.Employees, len(company.OwnedBuildings), e.aggressiveness)

	b.WriteString("competitors:\n")
	for _, other := range snap.ActiveCompanies() {
		if other.ID == company.ID {
			continue
		}
		fmt.Fprintf(&b, "  - id=%s name=%s capital=%d buildings=%d\n",
			other.ID, other.Name, other.Capital, len(other.OwnedBuildings))
	}

	b.WriteString("available buildings:\n")
	for i, building := range snap.AvailableBuildings() {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "  - id=%s name=%s cost=%d income=%d\n",
			building.ID, building.Name, building.PurchaseCost(), building.Income)
	}

	if snap.Market != nil {
		b.WriteString("stocks:\n")
		for _, sym := range snap.Market.Symbols() {
			stock := snap.Market.Stocks[sym]
			fmt.Fprintf(&b, "  - symbol=%s price=%.2f change=%.2f%%\n",
				sym, stock.Price, stock.ChangePercent())
		}
		b.WriteString("manipulations:\n")
		for _, action := range market.Catalog() {
			fmt.Fprintf(&b, "  - type=%s cost=%d risk=%s\n", action.Type, action.Cost, action.RiskTier)
		}
	}

	return b.String()
}

// Fallback is the deterministic heuristic used whenever inference is
// unavailable. Pure: identical inputs always return identical decisions.
func Fallback(company *types.Company, availableBuildings []*types.Building) types.AIDecision {
	switch {
	case company.Capital > 200_000 && len(availableBuildings) > 0:
		first := availableBuildings[0]
		return types.AIDecision{
			Action:        types.DecidePurchaseBuilding,
			Target:        first.ID,
			Reasoning:     "fallback: enough capital to expand holdings",
			Priority:      5,
			EstimatedCost: first.PurchaseCost(),
		}
	case company.Capital > 50_000:
		return types.AIDecision{
			Action:        types.DecideRecruitEmployee,
			Reasoning:     "fallback: grow headcount while funds allow",
			Priority:      4,
			EstimatedCost: 50_000,
		}
	default:
		return types.AIDecision{
			Action:    types.DecideWait,
			Reasoning: "fallback: conserving capital",
			Priority:  1,
		}
	}
}

func estimateCost(decision types.AIDecision, snap *types.WorldSnapshot) int64 {
	switch decision.Action {
	case types.DecidePurchaseBuilding:
		if b, ok := snap.Buildings[decision.Target]; ok {
			return b.PurchaseCost()
		}
	case types.DecideRecruitEmployee:
		return 50_000
	case types.DecideAttack:
		return 100_000
	case types.DecideIntelligence:
		return 30_000
	case types.DecideManipulateStock:
		if action, ok := market.ActionByType(types.ManipulationType(decision.Manipulation)); ok {
			return action.Cost
		}
	}
	return 0
}

// record appends to the per-company diagnostics ring, capped at 20.
// History is never consulted by control logic.
func (e *Engine) record(companyID string, decision types.AIDecision) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ring := append(e.history[companyID], decision)
	if len(ring) > historyCap {
		ring = ring[len(ring)-historyCap:]
	}
	e.history[companyID] = ring
}

// History returns a copy of the retained decisions for a company
func (e *Engine) History(companyID string) []types.AIDecision {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.AIDecision, len(e.history[companyID]))
	copy(out, e.history[companyID])
	return out
}
