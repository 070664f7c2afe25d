package types

import (
	"time"
)

// GameStatus tracks the overall state of a simulation run
type GameStatus string

const (
	GamePlaying GameStatus = "playing"
	GameVictory GameStatus = "victory"
	GameDefeat  GameStatus = "defeat"
)

// Ended reports whether the game has reached a terminal status
func (s GameStatus) Ended() bool {
	return s == GameVictory || s == GameDefeat
}

// CompanyStatus tracks whether a company is still in the game
type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyBankrupt CompanyStatus = "bankrupt"
)

// OrgType is the organizational structure of a company
type OrgType string

const (
	OrgCentralized   OrgType = "centralized"
	OrgDecentralized OrgType = "decentralized"
)

// Position is a point on the city map
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return sqrt(dx*dx + dy*dy)
}

// Company represents a competing economic actor (player or AI controlled)
type Company struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Capital          int64         `json:"capital"`
	Employees        int           `json:"employees"`
	OwnedBuildings   []string      `json:"owned_buildings"`
	OrgType          OrgType       `json:"org_type"`
	PlayerControlled bool          `json:"player_controlled"`
	Status           CompanyStatus `json:"status"`
}

// OwnsBuilding reports whether the company owns the given building
func (c *Company) OwnsBuilding(buildingID string) bool {
	for _, id := range c.OwnedBuildings {
		if id == buildingID {
			return true
		}
	}
	return false
}

// AddBuilding records ownership of a building (idempotent)
func (c *Company) AddBuilding(buildingID string) {
	if !c.OwnsBuilding(buildingID) {
		c.OwnedBuildings = append(c.OwnedBuildings, buildingID)
	}
}

// RemoveBuilding drops a building from the owned set
func (c *Company) RemoveBuilding(buildingID string) {
	for i, id := range c.OwnedBuildings {
		if id == buildingID {
			c.OwnedBuildings = append(c.OwnedBuildings[:i], c.OwnedBuildings[i+1:]...)
			return
		}
	}
}

// BuildingType enumerates the six kinds of map buildings
type BuildingType string

const (
	BuildingOffice     BuildingType = "office"
	BuildingFactory    BuildingType = "factory"
	BuildingShop       BuildingType = "shop"
	BuildingBank       BuildingType = "bank"
	BuildingTechCenter BuildingType = "tech_center"
	BuildingHotel      BuildingType = "hotel"
)

// Building represents a map-located asset companies compete for
type Building struct {
	ID       string       `json:"id"`
	Type     BuildingType `json:"type"`
	Position Position     `json:"position"`
	Name     string       `json:"name"`
	Level    int          `json:"level"`
	Income   int64        `json:"income"`
	// OwnerID is empty while the building is unowned
	OwnerID string `json:"owner_id,omitempty"`
}

// PurchaseCost returns the capital required to buy the building
func (b *Building) PurchaseCost() int64 {
	return int64(b.Level) * 100_000
}

// AgentStatus tracks what an agent is currently doing
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentMoving    AgentStatus = "moving"
	AgentWorking   AgentStatus = "working"
	AgentAttacking AgentStatus = "attacking"
)

// AgentTask enumerates the actions an agent can carry to its target
type AgentTask string

const (
	TaskPurchase     AgentTask = "purchase"
	TaskRecruit      AgentTask = "recruit"
	TaskAttack       AgentTask = "attack"
	TaskIntelligence AgentTask = "intelligence"
	TaskMove         AgentTask = "move"
)

// Agent represents a company employee operating on the map
type Agent struct {
	ID        string      `json:"id"`
	Position  Position    `json:"position"`
	Status    AgentStatus `json:"status"`
	Target    *Position   `json:"target,omitempty"`
	CompanyID string      `json:"company_id"`

	// Skill triple, bounded 0-100
	Negotiation int `json:"negotiation"`
	Espionage   int `json:"espionage"`
	Management  int `json:"management"`

	// PendingTask is resolved once on arrival, then cleared
	PendingTask      AgentTask `json:"pending_task,omitempty"`
	TargetBuildingID string    `json:"target_building_id,omitempty"`
}

// ClearTask resets the agent to idle with no target or pending work
func (a *Agent) ClearTask() {
	a.Status = AgentIdle
	a.Target = nil
	a.PendingTask = ""
	a.TargetBuildingID = ""
}

// EventKind classifies competition events
type EventKind string

const (
	EventAssetChange        EventKind = "asset_change"
	EventBuildingAcquired   EventKind = "building_acquired"
	EventCompanyEliminated  EventKind = "company_eliminated"
	EventHostileTakeover    EventKind = "hostile_takeover"
	EventMarketManipulation EventKind = "market_manipulation"
)

// CompetitionEvent is one append-only entry in the competition log
type CompetitionEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        EventKind `json:"kind"`
	CompanyID   string    `json:"company_id"`
	TargetID    string    `json:"target_id,omitempty"`
	Description string    `json:"description"`
	Impact      int64     `json:"impact"`
}

// DecisionAction enumerates the moves an AI company can request
type DecisionAction string

const (
	DecidePurchaseBuilding DecisionAction = "purchase_building"
	DecideRecruitEmployee  DecisionAction = "recruit_employee"
	DecideManipulateStock  DecisionAction = "stock_manipulation"
	DecideAttack           DecisionAction = "attack"
	DecideIntelligence     DecisionAction = "intelligence"
	DecideWait             DecisionAction = "wait"
)

// AIDecision is one structured decision produced per AI turn.
// Target holds a building id, stock symbol or company id depending on Action.
type AIDecision struct {
	ID            string         `json:"id"`
	CompanyID     string         `json:"company_id"`
	Action        DecisionAction `json:"action"`
	Target        string         `json:"target,omitempty"`
	Manipulation  string         `json:"manipulation,omitempty"`
	Reasoning     string         `json:"reasoning"`
	Priority      int            `json:"priority"`
	EstimatedCost int64          `json:"estimated_cost"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Analytics is the per-tick aggregate view of the competition
type Analytics struct {
	// MarketShare maps active company id to its share of total active
	// capital, as a percentage
	MarketShare map[string]float64 `json:"market_share"`
	// BuildingControl maps company id to owned buildings / total buildings,
	// as a percentage
	BuildingControl map[string]float64 `json:"building_control"`
	// Intensity scores recent event activity, 0-100
	Intensity float64 `json:"intensity"`
	// RiskLevel scores the volatility of recent asset swings, 0-100
	RiskLevel float64 `json:"risk_level"`
}

// GameResult records the final outcome of a finished run
type GameResult struct {
	WinnerID  string     `json:"winner_id,omitempty"`
	Reason    string     `json:"reason"`
	Status    GameStatus `json:"status"`
	FinalTurn int64      `json:"final_turn"`
	Analytics Analytics  `json:"analytics"`
}

// WorldSnapshot is the complete state of a simulation at one tick.
// The simulation clock is its only writer; every other component receives
// it by reference for queries or works on a Clone.
type WorldSnapshot struct {
	Turn          int64                `json:"turn"`
	Status        GameStatus           `json:"status"`
	WinnerID      string               `json:"winner_id,omitempty"`
	VictoryReason string               `json:"victory_reason,omitempty"`
	Companies     map[string]*Company  `json:"companies"`
	Buildings     map[string]*Building `json:"buildings"`
	Agents        map[string]*Agent    `json:"agents"`
	Market        *MarketState         `json:"market"`
	Analytics     Analytics            `json:"analytics"`
}

// NewWorldSnapshot creates an empty snapshot in the playing state
func NewWorldSnapshot() *WorldSnapshot {
	return &WorldSnapshot{
		Status:    GamePlaying,
		Companies: make(map[string]*Company),
		Buildings: make(map[string]*Building),
		Agents:    make(map[string]*Agent),
		Market:    NewMarketState(),
	}
}

// ActiveCompanies returns the companies still in play
func (s *WorldSnapshot) ActiveCompanies() []*Company {
	var active []*Company
	for _, c := range s.Companies {
		if c.Status == CompanyActive {
			active = append(active, c)
		}
	}
	return active
}

// TotalActiveCapital sums the capital of all active companies
func (s *WorldSnapshot) TotalActiveCapital() int64 {
	var total int64
	for _, c := range s.Companies {
		if c.Status == CompanyActive {
			total += c.Capital
		}
	}
	return total
}

// PlayerCompany returns the player-controlled company, if any
func (s *WorldSnapshot) PlayerCompany() *Company {
	for _, c := range s.Companies {
		if c.PlayerControlled {
			return c
		}
	}
	return nil
}

// AvailableBuildings returns the unowned buildings, cheapest first
func (s *WorldSnapshot) AvailableBuildings() []*Building {
	var available []*Building
	for _, b := range s.Buildings {
		if b.OwnerID == "" {
			available = append(available, b)
		}
	}
	sortBuildings(available)
	return available
}

// Clone produces a deep copy of the snapshot for delta detection and
// decision contexts
func (s *WorldSnapshot) Clone() *WorldSnapshot {
	clone := &WorldSnapshot{
		Turn:          s.Turn,
		Status:        s.Status,
		WinnerID:      s.WinnerID,
		VictoryReason: s.VictoryReason,
		Companies:     make(map[string]*Company, len(s.Companies)),
		Buildings:     make(map[string]*Building, len(s.Buildings)),
		Agents:        make(map[string]*Agent, len(s.Agents)),
		Analytics:     s.Analytics.clone(),
	}
	for id, c := range s.Companies {
		cc := *c
		cc.OwnedBuildings = append([]string(nil), c.OwnedBuildings...)
		clone.Companies[id] = &cc
	}
	for id, b := range s.Buildings {
		bb := *b
		clone.Buildings[id] = &bb
	}
	for id, a := range s.Agents {
		aa := *a
		if a.Target != nil {
			t := *a.Target
			aa.Target = &t
		}
		clone.Agents[id] = &aa
	}
	if s.Market != nil {
		clone.Market = s.Market.Clone()
	}
	return clone
}

func (a Analytics) clone() Analytics {
	out := Analytics{
		Intensity:       a.Intensity,
		RiskLevel:       a.RiskLevel,
		MarketShare:     make(map[string]float64, len(a.MarketShare)),
		BuildingControl: make(map[string]float64, len(a.BuildingControl)),
	}
	for k, v := range a.MarketShare {
		out.MarketShare[k] = v
	}
	for k, v := range a.BuildingControl {
		out.BuildingControl[k] = v
	}
	return out
}
