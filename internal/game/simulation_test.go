package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/corporate-warfare/config"
	"github.com/user/corporate-warfare/internal/ai"
	"github.com/user/corporate-warfare/internal/types"
)

func testSimulation(snap *types.WorldSnapshot) *Simulation {
	cfg := config.DefaultConfig()
	cfg.Game.Seed = 42
	// Wandering off in tests would make agent assertions flaky
	cfg.Game.WanderChance = 0
	decider := ai.NewEngine(nil, 0, cfg.Game.AIAggressiveness, nil)
	return NewSimulation(cfg, "test-room", snap, decider, nil)
}

func TestStepAccruesBuildingIncome(t *testing.T) {
	// Setup
	snap := testWorld()
	player := snap.Companies["player"]
	player.AddBuilding("tower")
	snap.Buildings["tower"].OwnerID = "player"
	sim := testSimulation(snap)

	// Income lands once per tick, only for the owner
	sim.Step()
	assert.Equal(t, int64(1_001_500), player.Capital)
	assert.Equal(t, int64(1_000_000), snap.Companies["rival"].Capital)
	assert.Equal(t, int64(1), snap.Turn)

	sim.Step()
	assert.Equal(t, int64(1_003_000), player.Capital)
}

func TestStepMovesAgentTowardTarget(t *testing.T) {
	// Setup
	snap := testWorld()
	agent := testAgent("player", 50, 50, 50)
	agent.Position = types.Position{X: 0, Y: 0}
	target := types.Position{X: 100, Y: 0}
	agent.Status = types.AgentMoving
	agent.Target = &target
	agent.PendingTask = types.TaskMove
	snap.Agents[agent.ID] = agent
	sim := testSimulation(snap)

	// One tick covers exactly the configured speed
	sim.Step()
	assert.InDelta(t, 5.0, agent.Position.X, 1e-9)
	assert.Equal(t, types.AgentMoving, agent.Status)
}

func TestStepResolvesPurchaseOnArrival(t *testing.T) {
	// Setup
	snap := testWorld()
	player := snap.Companies["player"]
	agent := testAgent("player", 50, 50, 50)
	agent.Position = snap.Buildings["tower"].Position
	agent.Status = types.AgentMoving
	agent.Target = &snap.Buildings["tower"].Position
	agent.PendingTask = types.TaskPurchase
	agent.TargetBuildingID = "tower"
	snap.Agents[agent.ID] = agent
	sim := testSimulation(snap)

	// Arrival resolves the purchase, then income accrues the same tick
	sim.Step()
	assert.Equal(t, "player", snap.Buildings["tower"].OwnerID)
	assert.Equal(t, int64(1_000_000-100_000+1_500), player.Capital)

	// Task cleared exactly once
	assert.Equal(t, types.AgentIdle, agent.Status)
	assert.Empty(t, string(agent.PendingTask))
	assert.Nil(t, agent.Target)
}

func TestPendingDecisionAppliesAfterDelay(t *testing.T) {
	// Setup
	snap := testWorld()
	agent := testAgent("rival", 50, 50, 50)
	snap.Agents[agent.ID] = agent
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision: types.AIDecision{
			Action: types.DecidePurchaseBuilding,
			Target: "tower",
		},
		applyAt: 3,
	})

	// Test case 1: before the delay elapses nothing happens
	sim.Step()
	assert.Len(t, sim.pending, 1)
	assert.Equal(t, types.AgentIdle, agent.Status)

	// Test case 2: once due, an idle agent is dispatched to the building
	sim.Step()
	sim.Step()
	assert.Empty(t, sim.pending)
	assert.Equal(t, types.AgentMoving, agent.Status)
	assert.Equal(t, types.TaskPurchase, agent.PendingTask)
	assert.Equal(t, "tower", agent.TargetBuildingID)
}

func TestStaleDecisionIsDiscarded(t *testing.T) {
	// Setup: the building was bought by someone else while the AI thought
	snap := testWorld()
	agent := testAgent("rival", 50, 50, 50)
	snap.Agents[agent.ID] = agent
	snap.Companies["player"].AddBuilding("tower")
	snap.Buildings["tower"].OwnerID = "player"
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision: types.AIDecision{
			Action: types.DecidePurchaseBuilding,
			Target: "tower",
		},
		applyAt: 1,
	})

	sim.Step()
	assert.Empty(t, sim.pending)
	assert.Equal(t, types.AgentIdle, agent.Status)
	assert.Equal(t, "player", snap.Buildings["tower"].OwnerID)
	assert.Equal(t, int64(1_000_000), snap.Companies["rival"].Capital)
}

func TestUnaffordableDecisionIsDiscarded(t *testing.T) {
	// Setup
	snap := testWorld()
	agent := testAgent("rival", 50, 50, 50)
	snap.Agents[agent.ID] = agent
	snap.Companies["rival"].Capital = 10_000
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision: types.AIDecision{
			Action: types.DecidePurchaseBuilding,
			Target: "plant",
		},
		applyAt: 1,
	})

	sim.Step()
	assert.Empty(t, sim.pending)
	assert.Equal(t, types.AgentIdle, agent.Status)
	assert.Empty(t, snap.Buildings["plant"].OwnerID)
}

func TestRecruitDecisionAppliesInstantly(t *testing.T) {
	// Setup
	snap := testWorld()
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision:  types.AIDecision{Action: types.DecideRecruitEmployee},
		applyAt:   1,
	})

	sim.Step()
	assert.Equal(t, int64(950_000), snap.Companies["rival"].Capital)
	assert.Equal(t, 1, snap.Companies["rival"].Employees)
}

func TestManipulationDecisionDebitsCost(t *testing.T) {
	// Setup
	snap := testWorld()
	snap.Market.Stocks["APEX"] = &types.Stock{
		Symbol: "APEX", Name: "Apex Holdings",
		Price: 100, PreviousPrice: 100, Volume: 1000, Volatility: 0.01,
	}
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision: types.AIDecision{
			Action:       types.DecideManipulateStock,
			Target:       "APEX",
			Manipulation: "spread_rumor",
		},
		applyAt: 1,
	})

	// Every outcome branch costs something
	sim.Step()
	assert.Less(t, snap.Companies["rival"].Capital, int64(1_000_000))
	assert.NotEmpty(t, sim.Events())
}

func TestManipulationDecisionUnknownTypeIsDropped(t *testing.T) {
	// Setup
	snap := testWorld()
	snap.Market.Stocks["APEX"] = &types.Stock{Symbol: "APEX", Price: 100, Volume: 1000}
	sim := testSimulation(snap)

	sim.pending = append(sim.pending, pendingDecision{
		companyID: "rival",
		decision: types.AIDecision{
			Action:       types.DecideManipulateStock,
			Target:       "APEX",
			Manipulation: "mind_control",
		},
		applyAt: 1,
	})

	sim.Step()
	assert.Equal(t, int64(1_000_000), snap.Companies["rival"].Capital)
}

func TestBankruptcyLeadsToLastStandingVictory(t *testing.T) {
	// Setup: two companies, the rival is broke
	snap := testWorld()
	snap.Companies["rival"].Capital = 0
	sim := testSimulation(snap)

	sim.Step()

	assert.Equal(t, types.CompanyBankrupt, snap.Companies["rival"].Status)
	assert.Equal(t, types.GameVictory, snap.Status)
	assert.Equal(t, "player", snap.WinnerID)
	assert.Equal(t, "eliminated all competitors", snap.VictoryReason)
	turn := snap.Turn

	// Ended games no longer advance
	sim.Step()
	sim.Step()
	assert.Equal(t, turn, snap.Turn)
}

func TestCommandAgent(t *testing.T) {
	// Setup
	snap := testWorld()
	agent := testAgent("player", 50, 50, 50)
	snap.Agents[agent.ID] = agent
	sim := testSimulation(snap)

	// Test case 1: travel command
	err := sim.CommandAgent(agent.ID, types.TaskPurchase, "plant")
	assert.NoError(t, err)
	assert.Equal(t, types.AgentMoving, agent.Status)
	assert.Equal(t, "plant", agent.TargetBuildingID)

	// Test case 2: recruit resolves immediately
	err = sim.CommandAgent(agent.ID, types.TaskRecruit, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(950_000), snap.Companies["player"].Capital)

	// Test case 3: unknown agent
	err = sim.CommandAgent("ghost", types.TaskPurchase, "plant")
	assert.ErrorIs(t, err, ErrAgentNotFound)

	// Test case 4: missing building target
	err = sim.CommandAgent(agent.ID, types.TaskAttack, "missing")
	assert.ErrorIs(t, err, ErrBuildingRequired)
}

func TestExecuteTakeoverThroughSimulation(t *testing.T) {
	// Setup
	snap := testWorld()
	snap.Companies["player"].Capital = 2_000_000
	snap.Companies["rival"].Capital = 400_000
	snap.Companies["rival"].AddBuilding("tower")
	snap.Buildings["tower"].OwnerID = "rival"
	sim := testSimulation(snap)

	result := sim.ExecuteTakeover("player", "rival")
	assert.True(t, result.Success)
	assert.Equal(t, int64(600_000), result.Cost)
	assert.Equal(t, types.CompanyBankrupt, snap.Companies["rival"].Status)
	assert.Equal(t, "player", snap.Buildings["tower"].OwnerID)
}

func TestSnapshotReturnsIsolatedCopy(t *testing.T) {
	// Setup
	snap := testWorld()
	sim := testSimulation(snap)

	copy1 := sim.Snapshot()
	copy1.Companies["player"].Capital = 1

	assert.Equal(t, int64(1_000_000), snap.Companies["player"].Capital)
}
