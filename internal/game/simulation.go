// Package game contains the simulation clock and the agent action
// resolver: the single writer of the world snapshot and the pure rule
// functions it applies.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/corporate-warfare/config"
	"github.com/user/corporate-warfare/internal/ai"
	"github.com/user/corporate-warfare/internal/competition"
	"github.com/user/corporate-warfare/internal/interfaces"
	"github.com/user/corporate-warfare/internal/market"
	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/types"
)

// Agents arrive once they are closer than this to their target
const arrivalEpsilon = 1.0

var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrBuildingRequired = errors.New("action requires a target building")
	ErrGameEnded        = errors.New("game already ended")
)

// pendingDecision is an AI decision waiting out its randomized thinking
// delay. It carries the turn it was computed against for diagnostics;
// preconditions are re-checked against the live state at apply time.
type pendingDecision struct {
	companyID    string
	decision     types.AIDecision
	computedTurn int64
	applyAt      int64
}

// Simulation owns the live world snapshot and drives one discrete step
// per tick. All snapshot mutation happens under its lock; AI decision
// requests are the only operation allowed to leave it.
type Simulation struct {
	mu     sync.RWMutex
	cfg    config.Config
	logger *zap.Logger
	roller *prob.Roller

	roomID  string
	state   *types.WorldSnapshot
	prev    *types.WorldSnapshot
	comp    *competition.Engine
	decider *ai.Engine

	notifier interfaces.Notifier
	store    interfaces.SnapshotStore

	pending          []pendingDecision
	lastDecisionTurn int64
	lastSaveTurn     int64
	completed        bool

	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewSimulation creates a simulation clock over the given starting world
func NewSimulation(cfg config.Config, roomID string, snap *types.WorldSnapshot, decider *ai.Engine, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	comp := competition.NewEngine(competition.Config{
		EliminationThreshold: cfg.Game.EliminationThreshold,
		VictoryShare:         cfg.Game.VictoryShare,
		GracePeriodTicks:     cfg.Game.GracePeriodTicks,
	}, logger)

	return &Simulation{
		cfg:      cfg,
		logger:   logger,
		roller:   prob.NewRoller(cfg.Game.Seed),
		roomID:   roomID,
		state:    snap,
		prev:     snap.Clone(),
		comp:     comp,
		decider:  decider,
		notifier: nopNotifier{},
		stopChan: make(chan struct{}),
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(level, message string) {}

// SetNotifier wires the notification collaborator
func (s *Simulation) SetNotifier(n interfaces.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// SetStore wires the persistence collaborator
func (s *Simulation) SetStore(store interfaces.SnapshotStore) {
	s.store = store
}

// Start begins the fixed-interval tick loop
func (s *Simulation) Start() {
	interval := time.Duration(s.cfg.Game.TickIntervalMS) * time.Millisecond
	s.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.Step()
			case <-s.stopChan:
				s.ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the tick loop
func (s *Simulation) Stop() {
	close(s.stopChan)
}

// Step advances the simulation by exactly one tick. Exposed so tests can
// drive the clock without timers.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	st := s.state
	if st.Status.Ended() {
		s.finalizeLocked()
		return
	}

	st.Turn++

	s.moveAgentsLocked(now)
	s.wanderIdleAgentsLocked()
	s.accrueIncomeLocked()
	s.applyPendingLocked(now)
	s.dispatchDecisionsLocked()

	market.UpdateMarket(st.Market, s.roller, s.cfg.Game.MarketVolatilityScale, st.Turn)

	s.comp.RunChecks(s.prev, st, now)
	st.Analytics = s.comp.ComputeAnalytics(st, now)
	if st.Status.Ended() {
		s.finalizeLocked()
	}

	s.prev = st.Clone()
	s.autosaveLocked()
}

// moveAgentsLocked advances every moving agent toward its target and
// resolves the pending action on arrival
func (s *Simulation) moveAgentsLocked(now time.Time) {
	st := s.state
	speed := s.cfg.Game.AgentSpeed

	for _, agent := range st.Agents {
		if agent.Status != types.AgentMoving || agent.Target == nil {
			continue
		}

		dist := agent.Position.DistanceTo(*agent.Target)
		if dist > arrivalEpsilon && dist > speed {
			agent.Position.X += (agent.Target.X - agent.Position.X) / dist * speed
			agent.Position.Y += (agent.Target.Y - agent.Position.Y) / dist * speed
			continue
		}

		agent.Position = *agent.Target
		s.resolveArrivalLocked(agent, now)
		agent.ClearTask()
	}
}

// resolveArrivalLocked runs the agent's pending action against the
// current world state
func (s *Simulation) resolveArrivalLocked(agent *types.Agent, now time.Time) {
	st := s.state

	var outcome Outcome
	switch agent.PendingTask {
	case types.TaskPurchase:
		outcome = ResolvePurchase(st, agent.CompanyID, agent.TargetBuildingID)
	case types.TaskRecruit:
		outcome = ResolveRecruit(st, agent.CompanyID)
	case types.TaskAttack:
		outcome = ResolveAttack(st, agent, agent.TargetBuildingID, s.roller)
	case types.TaskIntelligence:
		building, ok := st.Buildings[agent.TargetBuildingID]
		if !ok || building.OwnerID == "" {
			outcome = Outcome{Message: "espionage target no longer owned"}
		} else {
			outcome = ResolveIntelligence(st, agent, building.OwnerID, s.roller)
		}
	default:
		return
	}

	level := interfaces.LevelError
	if outcome.Success {
		level = interfaces.LevelSuccess
	}
	s.notifier.Notify(level, outcome.Message)
	s.recordAction(agent.CompanyID, string(agent.PendingTask), outcome, st.Turn)
}

// wanderIdleAgentsLocked gives idle AI agents a low-priority wandering
// target now and then. Not economically significant.
func (s *Simulation) wanderIdleAgentsLocked() {
	st := s.state
	game := s.cfg.Game

	for _, agent := range st.Agents {
		if agent.Status != types.AgentIdle {
			continue
		}
		company, ok := st.Companies[agent.CompanyID]
		if !ok || company.PlayerControlled || company.Status != types.CompanyActive {
			continue
		}
		if !s.roller.Chance(game.WanderChance) {
			continue
		}
		target := types.Position{
			X: s.roller.Float64() * game.MapWidth,
			Y: s.roller.Float64() * game.MapHeight,
		}
		agent.Status = types.AgentMoving
		agent.Target = &target
		agent.PendingTask = types.TaskMove
	}
}

// accrueIncomeLocked pays every active company the income of the
// buildings it owns
func (s *Simulation) accrueIncomeLocked() {
	st := s.state
	for _, building := range st.Buildings {
		if building.OwnerID == "" {
			continue
		}
		company, ok := st.Companies[building.OwnerID]
		if !ok || company.Status != types.CompanyActive {
			continue
		}
		company.Capital += building.Income
	}
}

// dispatchDecisionsLocked fires one asynchronous decision request per
// active AI company once the cooldown has elapsed. The computed decision
// is applied later, after a randomized thinking delay, against whatever
// the world looks like then.
func (s *Simulation) dispatchDecisionsLocked() {
	st := s.state
	game := s.cfg.Game

	if st.Turn-s.lastDecisionTurn < game.DecisionCooldownTicks {
		return
	}
	s.lastDecisionTurn = st.Turn

	snapCopy := st.Clone()
	for id, company := range st.Companies {
		if company.PlayerControlled || company.Status != types.CompanyActive {
			continue
		}
		// Delay is rolled here so the roller stays on the clock thread
		delay := s.roller.Between(game.DecisionDelayMinTicks, game.DecisionDelayMaxTicks)
		go s.requestDecision(snapCopy.Companies[id], snapCopy, st.Turn, st.Turn+delay)
	}
}

// requestDecision runs off the clock thread. A panic in one company's
// decision path must never stall the tick or the other companies.
func (s *Simulation) requestDecision(company *types.Company, snap *types.WorldSnapshot, computedTurn, applyAt int64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("decision request panicked",
				zap.String("company_id", company.ID),
				zap.Any("panic", r))
		}
	}()

	decision := s.decider.MakeDecision(context.Background(), company, snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingDecision{
		companyID:    company.ID,
		decision:     decision,
		computedTurn: computedTurn,
		applyAt:      applyAt,
	})
}

// applyPendingLocked applies every decision whose thinking delay has
// elapsed. Decisions are advisory, not transactional: stale or
// unaffordable ones are silently discarded because the world has moved
// on since they were computed.
func (s *Simulation) applyPendingLocked(now time.Time) {
	st := s.state
	kept := s.pending[:0]
	for _, pd := range s.pending {
		if pd.applyAt > st.Turn {
			kept = append(kept, pd)
			continue
		}
		s.applyDecisionLocked(pd, now)
	}
	s.pending = kept
}

func (s *Simulation) applyDecisionLocked(pd pendingDecision, now time.Time) {
	st := s.state
	company, ok := st.Companies[pd.companyID]
	if !ok || company.Status != types.CompanyActive {
		return
	}
	d := pd.decision

	s.logger.Debug("applying AI decision",
		zap.String("company_id", company.ID),
		zap.String("action", string(d.Action)),
		zap.String("target", d.Target),
		zap.Int64("computed_turn", pd.computedTurn),
		zap.Int64("applied_turn", st.Turn))

	switch d.Action {
	case types.DecideWait:
		return

	case types.DecideRecruitEmployee:
		outcome := ResolveRecruit(st, company.ID)
		if outcome.Success {
			s.notifier.Notify(interfaces.LevelInfo, outcome.Message)
		}
		s.recordAction(company.ID, string(d.Action), outcome, st.Turn)

	case types.DecidePurchaseBuilding:
		building, ok := st.Buildings[d.Target]
		if !ok || building.OwnerID != "" || company.Capital < building.PurchaseCost() {
			return
		}
		s.assignAgentLocked(company.ID, types.TaskPurchase, building)

	case types.DecideAttack:
		building := s.attackTargetLocked(company, d.Target)
		if building == nil || company.Capital < AttackCost {
			return
		}
		s.assignAgentLocked(company.ID, types.TaskAttack, building)

	case types.DecideIntelligence:
		target, ok := st.Companies[d.Target]
		if !ok || target.Status != types.CompanyActive || target.ID == company.ID ||
			len(target.OwnedBuildings) == 0 || company.Capital < IntelCost {
			return
		}
		building, ok := st.Buildings[target.OwnedBuildings[0]]
		if !ok {
			return
		}
		s.assignAgentLocked(company.ID, types.TaskIntelligence, building)

	case types.DecideManipulateStock:
		s.executeManipulationLocked(company, d, now)
	}
}

// attackTargetLocked resolves a decision target that may be either a
// building id or a company id into a concrete enemy building
func (s *Simulation) attackTargetLocked(attacker *types.Company, target string) *types.Building {
	st := s.state
	if building, ok := st.Buildings[target]; ok {
		if building.OwnerID != "" && building.OwnerID != attacker.ID {
			return building
		}
		return nil
	}
	if enemy, ok := st.Companies[target]; ok && enemy.ID != attacker.ID {
		for _, buildingID := range enemy.OwnedBuildings {
			if building, ok := st.Buildings[buildingID]; ok {
				return building
			}
		}
	}
	return nil
}

// assignAgentLocked sends an idle agent of the company toward the
// building with the given task. No idle agent means the decision is
// dropped.
func (s *Simulation) assignAgentLocked(companyID string, task types.AgentTask, building *types.Building) {
	agent := s.idleAgentLocked(companyID)
	if agent == nil {
		return
	}
	target := building.Position
	agent.Status = types.AgentMoving
	agent.Target = &target
	agent.PendingTask = task
	agent.TargetBuildingID = building.ID
}

func (s *Simulation) idleAgentLocked(companyID string) *types.Agent {
	for _, agent := range s.state.Agents {
		if agent.CompanyID == companyID && agent.Status == types.AgentIdle {
			return agent
		}
	}
	return nil
}

func (s *Simulation) executeManipulationLocked(company *types.Company, d types.AIDecision, now time.Time) {
	st := s.state
	actionType := types.ManipulationType(d.Manipulation)
	action, ok := market.ActionByType(actionType)
	if !ok || company.Capital < action.Cost {
		return
	}

	result, err := market.ExecuteManipulation(st.Market, s.roller, company.ID, d.Target, actionType, st.Turn)
	if err != nil {
		return
	}

	company.Capital -= result.Cost
	s.comp.RecordManipulation(company.ID, d.Target, result.Success, result.Cost, now)

	switch {
	case result.Detected:
		s.notifier.Notify(interfaces.LevelWarning, company.Name+" was caught manipulating "+d.Target)
	case result.Success:
		s.notifier.Notify(interfaces.LevelInfo, company.Name+" moved the market on "+d.Target)
	}
	s.recordAction(company.ID, string(d.Action), result, st.Turn)
}

// CommandAgent lets the presentation layer direct one of the player's
// agents. Recruiting resolves immediately; everything else sends the
// agent traveling and resolves on arrival.
func (s *Simulation) CommandAgent(agentID string, task types.AgentTask, targetBuildingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Status.Ended() {
		return ErrGameEnded
	}
	agent, ok := st.Agents[agentID]
	if !ok {
		return ErrAgentNotFound
	}

	if task == types.TaskRecruit {
		outcome := ResolveRecruit(st, agent.CompanyID)
		level := interfaces.LevelError
		if outcome.Success {
			level = interfaces.LevelSuccess
		}
		s.notifier.Notify(level, outcome.Message)
		return nil
	}

	building, ok := st.Buildings[targetBuildingID]
	if !ok {
		return ErrBuildingRequired
	}
	target := building.Position
	agent.Status = types.AgentMoving
	agent.Target = &target
	agent.PendingTask = task
	agent.TargetBuildingID = building.ID
	return nil
}

// ExecuteTakeover runs a hostile takeover on behalf of the attacker
func (s *Simulation) ExecuteTakeover(attackerID, targetID string) competition.TakeoverResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status.Ended() {
		return competition.TakeoverResult{Message: "game already ended"}
	}
	result := s.comp.ExecuteTakeover(s.state, attackerID, targetID, time.Now())
	level := interfaces.LevelError
	if result.Success {
		level = interfaces.LevelSuccess
	}
	s.notifier.Notify(level, result.Message)
	s.recordAction(attackerID, "hostile_takeover", result, s.state.Turn)
	return result
}

// Snapshot returns a deep copy of the current world state
func (s *Simulation) Snapshot() *types.WorldSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Events returns the competition event log
func (s *Simulation) Events() []types.CompetitionEvent {
	return s.comp.Events()
}

// DecisionHistory returns the retained AI decisions for a company
func (s *Simulation) DecisionHistory(companyID string) []types.AIDecision {
	return s.decider.History(companyID)
}

// finalizeLocked records the final result exactly once after the game
// has ended
func (s *Simulation) finalizeLocked() {
	if s.completed {
		return
	}
	s.completed = true

	st := s.state
	result := &types.GameResult{
		WinnerID:  st.WinnerID,
		Reason:    st.VictoryReason,
		Status:    st.Status,
		FinalTurn: st.Turn,
		Analytics: st.Analytics,
	}

	s.notifier.Notify(interfaces.LevelInfo, "game over: "+st.VictoryReason)

	if s.store == nil {
		return
	}
	store, roomID := s.store, s.roomID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.CompleteGame(ctx, roomID, result); err != nil {
			s.logger.Warn("failed to record game result", zap.Error(err))
		}
	}()
}

// autosaveLocked opportunistically persists the snapshot; failures are
// logged and never stall the tick
func (s *Simulation) autosaveLocked() {
	game := s.cfg.Game
	if s.store == nil || game.AutosaveTicks <= 0 {
		return
	}
	if s.state.Turn-s.lastSaveTurn < game.AutosaveTicks {
		return
	}
	s.lastSaveTurn = s.state.Turn

	snap := s.state.Clone()
	store, roomID := s.store, s.roomID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveSnapshot(ctx, roomID, snap); err != nil {
			s.logger.Warn("autosave failed", zap.Error(err))
		}
	}()
}

// recordAction persists one action record off the clock thread
func (s *Simulation) recordAction(actorID, actionType string, payload any, turn int64) {
	if s.store == nil {
		return
	}
	store, roomID := s.store, s.roomID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.RecordAction(ctx, roomID, actorID, actionType, payload, turn); err != nil {
			s.logger.Debug("failed to record action", zap.Error(err))
		}
	}()
}
