// Package room assembles the initial world for a simulation run: the
// roster of player and AI companies, their agents, and the building and
// stock catalogs loaded from seed data.
package room

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/user/corporate-warfare/config"
	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/types"
)

var aiCompanyNames = []string{
	"Apex Holdings",
	"Sterling Group",
	"Meridian Corp",
	"Vanguard Industries",
	"Obsidian Capital",
	"Northwind Trading",
}

// Room identifies one simulation session and its configuration bundle
type Room struct {
	ID     string
	Config config.Config
}

// NewRoom creates a room with a fresh id
func NewRoom(cfg config.Config) *Room {
	return &Room{
		ID:     uuid.New().String(),
		Config: cfg,
	}
}

// BuildWorld creates the starting snapshot: one player company, the
// configured number of AI companies, agents for each, plus the building
// and stock rosters.
func (r *Room) BuildWorld(roller *prob.Roller, buildings []*types.Building, stocks []*types.Stock) *types.WorldSnapshot {
	snap := types.NewWorldSnapshot()
	game := r.Config.Game

	player := &types.Company{
		ID:               uuid.New().String(),
		Name:             "Player Corp",
		Capital:          game.StartingCapital,
		OrgType:          types.OrgCentralized,
		PlayerControlled: true,
		Status:           types.CompanyActive,
	}
	snap.Companies[player.ID] = player
	r.spawnAgents(snap, roller, player)

	for i := 0; i < game.AICompanyCount; i++ {
		orgType := types.OrgCentralized
		if i%2 == 1 {
			orgType = types.OrgDecentralized
		}
		company := &types.Company{
			ID:      uuid.New().String(),
			Name:    aiName(i),
			Capital: game.StartingCapital,
			OrgType: orgType,
			Status:  types.CompanyActive,
		}
		snap.Companies[company.ID] = company
		r.spawnAgents(snap, roller, company)
	}

	for _, building := range buildings {
		b := *building
		snap.Buildings[b.ID] = &b
	}
	for _, stock := range stocks {
		s := *stock
		s.PreviousPrice = s.Price
		s.DayOpen = s.Price
		s.DayHigh = s.Price
		s.DayLow = s.Price
		snap.Market.Stocks[s.Symbol] = &s
	}

	return snap
}

func (r *Room) spawnAgents(snap *types.WorldSnapshot, roller *prob.Roller, company *types.Company) {
	game := r.Config.Game
	for i := 0; i < game.AgentsPerCompany; i++ {
		agent := &types.Agent{
			ID: uuid.New().String(),
			Position: types.Position{
				X: roller.Float64() * game.MapWidth,
				Y: roller.Float64() * game.MapHeight,
			},
			Status:      types.AgentIdle,
			CompanyID:   company.ID,
			Negotiation: int(roller.Between(30, 80)),
			Espionage:   int(roller.Between(30, 80)),
			Management:  int(roller.Between(30, 80)),
		}
		snap.Agents[agent.ID] = agent
		company.Employees++
	}
}

func aiName(i int) string {
	if i < len(aiCompanyNames) {
		return aiCompanyNames[i]
	}
	return fmt.Sprintf("Syndicate %d", i+1)
}
