package game

import (
	"fmt"
	"math"

	"github.com/user/corporate-warfare/internal/prob"
	"github.com/user/corporate-warfare/internal/types"
)

// Fixed action economics. These are rule constants, not configuration.
const (
	RecruitCost     = int64(50_000)
	AttackCost      = int64(100_000)
	AttackDefense   = 50
	AttackBias      = 30
	DefenderPenalty = int64(50_000)
	IntelCost       = int64(30_000)
	IntelShare      = 0.05
)

// Outcome is the result of resolving one agent action against the world
type Outcome struct {
	Success bool
	Message string
	// Impact is the capital moved by the action, from the initiator's
	// point of view
	Impact int64
}

// ResolvePurchase transfers an unowned building to the agent's company
// when capital covers level x 100,000. Insufficient funds or an owned
// building leave the world unchanged.
func ResolvePurchase(snap *types.WorldSnapshot, companyID, buildingID string) Outcome {
	company, ok := snap.Companies[companyID]
	if !ok || company.Status != types.CompanyActive {
		return Outcome{Message: "company not active"}
	}
	building, ok := snap.Buildings[buildingID]
	if !ok {
		return Outcome{Message: "building not found"}
	}
	if building.OwnerID != "" {
		return Outcome{Message: fmt.Sprintf("%s is already owned", building.Name)}
	}
	cost := building.PurchaseCost()
	if company.Capital < cost {
		return Outcome{Message: fmt.Sprintf("%s lacks funds to buy %s", company.Name, building.Name)}
	}

	company.Capital -= cost
	company.AddBuilding(building.ID)
	building.OwnerID = company.ID
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s acquired %s", company.Name, building.Name),
		Impact:  -cost,
	}
}

// ResolveRecruit hires one employee for the fixed recruitment cost
func ResolveRecruit(snap *types.WorldSnapshot, companyID string) Outcome {
	company, ok := snap.Companies[companyID]
	if !ok || company.Status != types.CompanyActive {
		return Outcome{Message: "company not active"}
	}
	if company.Capital < RecruitCost {
		return Outcome{Message: fmt.Sprintf("%s lacks funds to recruit", company.Name)}
	}

	company.Capital -= RecruitCost
	company.Employees++
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s recruited an employee", company.Name),
		Impact:  -RecruitCost,
	}
}

// AttackSuccessProbability returns the chance an attack with the given
// power succeeds against the baseline defense
func AttackSuccessProbability(attackPower int) float64 {
	p := float64(attackPower-AttackDefense+AttackBias) / 100
	return math.Min(1, math.Max(0, p))
}

// ResolveAttack runs one hostile strike against an owned building.
// Attack power is the agent's management plus negotiation skill; success
// transfers the building, the attacker always pays the attack cost.
func ResolveAttack(snap *types.WorldSnapshot, agent *types.Agent, buildingID string, roller *prob.Roller) Outcome {
	attacker, ok := snap.Companies[agent.CompanyID]
	if !ok || attacker.Status != types.CompanyActive {
		return Outcome{Message: "attacking company not active"}
	}
	building, ok := snap.Buildings[buildingID]
	if !ok {
		return Outcome{Message: "building not found"}
	}
	if building.OwnerID == "" || building.OwnerID == attacker.ID {
		return Outcome{Message: "no enemy owner to attack"}
	}
	defender, ok := snap.Companies[building.OwnerID]
	if !ok || defender.Status != types.CompanyActive {
		return Outcome{Message: "defending company not active"}
	}
	if attacker.Capital < AttackCost {
		return Outcome{Message: fmt.Sprintf("%s lacks funds to attack", attacker.Name)}
	}

	attacker.Capital -= AttackCost
	power := agent.Management + agent.Negotiation
	if !roller.Chance(AttackSuccessProbability(power)) {
		return Outcome{
			Message: fmt.Sprintf("%s failed to seize %s", attacker.Name, building.Name),
			Impact:  -AttackCost,
		}
	}

	defender.Capital -= DefenderPenalty
	defender.RemoveBuilding(building.ID)
	attacker.AddBuilding(building.ID)
	building.OwnerID = attacker.ID
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s seized %s from %s", attacker.Name, building.Name, defender.Name),
		Impact:  -AttackCost,
	}
}

// ResolveIntelligence runs one espionage operation against a competitor.
// Spy power (espionage + negotiation) is used directly as a success
// percentage; success transfers 5% of the target's current capital.
func ResolveIntelligence(snap *types.WorldSnapshot, agent *types.Agent, targetCompanyID string, roller *prob.Roller) Outcome {
	spy, ok := snap.Companies[agent.CompanyID]
	if !ok || spy.Status != types.CompanyActive {
		return Outcome{Message: "spying company not active"}
	}
	target, ok := snap.Companies[targetCompanyID]
	if !ok || target.Status != types.CompanyActive || target.ID == spy.ID {
		return Outcome{Message: "no valid espionage target"}
	}
	if spy.Capital < IntelCost {
		return Outcome{Message: fmt.Sprintf("%s lacks funds for espionage", spy.Name)}
	}

	spy.Capital -= IntelCost
	power := agent.Espionage + agent.Negotiation
	if !roller.Chance(float64(power) / 100) {
		return Outcome{
			Message: fmt.Sprintf("%s espionage against %s failed", spy.Name, target.Name),
			Impact:  -IntelCost,
		}
	}

	stolen := int64(float64(target.Capital) * IntelShare)
	target.Capital -= stolen
	spy.Capital += stolen
	return Outcome{
		Success: true,
		Message: fmt.Sprintf("%s stole secrets worth %d from %s", spy.Name, stolen, target.Name),
		Impact:  stolen - IntelCost,
	}
}
