package ai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/corporate-warfare/internal/types"
)

var ErrUnparseableReply = errors.New("unparseable inference reply")

var knownActions = map[types.DecisionAction]bool{
	types.DecidePurchaseBuilding: true,
	types.DecideRecruitEmployee:  true,
	types.DecideManipulateStock:  true,
	types.DecideAttack:           true,
	types.DecideIntelligence:     true,
	types.DecideWait:             true,
}

// ParseDecision parses the line-prefixed reply grammar:
//
//	action: purchase_building
//	target: bld-downtown-2
//	reasoning: cheapest income source on the board
//	priority: 7
//
// The action line is mandatory and must name a known action; anything
// else is treated as a fallback signal rather than partially parsed.
func ParseDecision(reply string) (types.AIDecision, error) {
	decision := types.AIDecision{Priority: 5}
	seenAction := false

	for _, line := range strings.Split(reply, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "action":
			action := types.DecisionAction(strings.ToLower(value))
			if !knownActions[action] {
				return types.AIDecision{}, fmt.Errorf("%w: unknown action %q", ErrUnparseableReply, value)
			}
			decision.Action = action
			seenAction = true
		case "target":
			decision.Target = value
		case "manipulation":
			decision.Manipulation = strings.ToLower(value)
		case "reasoning":
			decision.Reasoning = value
		case "priority":
			p, err := strconv.Atoi(value)
			if err == nil {
				decision.Priority = clampPriority(p)
			}
		}
	}

	if !seenAction {
		return types.AIDecision{}, fmt.Errorf("%w: missing action line", ErrUnparseableReply)
	}
	return decision, nil
}

func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}
