package overlay

import (
	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

// SafetyReactor maps each active trigger to one mitigating action
type SafetyReactor struct{}

// NewSafetyReactor creates a new safety reactor
func NewSafetyReactor() *SafetyReactor {
	return &SafetyReactor{}
}

// Calculate derives a reaction for every trigger fired in the latest
// evaluation pass
func (sr *SafetyReactor) Calculate(state darwin.State) []SafetyReaction {
	var reactions []SafetyReaction
	for _, trigger := range state.Triggers {
		if trigger.FiredAt.Before(state.LastRebalance) {
			continue // Historical trigger, already acted on
		}
		reactions = append(reactions, reactionFor(trigger))
	}
	return reactions
}

func reactionFor(trigger darwin.SafetyTrigger) SafetyReaction {
	reaction := SafetyReaction{Trigger: trigger}

	switch trigger.Type {
	case darwin.TriggerProfitFactorLow:
		reaction.Action = "Halve position sizing until profit factor recovers above the minimum"
		reaction.CapitalReduction = 0.5
	case darwin.TriggerExpSlopeNegative:
		reaction.Action = "Reduce trade frequency while expectancy is trending down"
		reaction.CapitalReduction = 0.3
	case darwin.TriggerDrawdownSpike:
		reaction.Action = "Cut capital and route the pair through the top agent only"
		reaction.CapitalReduction = 0.6
		reaction.RestrictToTopAgent = true
	case darwin.TriggerCoalitionCollapse:
		reaction.Action = "Freeze coalition trading until synergy recovers"
		reaction.CapitalReduction = 0.4
		reaction.FreezeCoalitions = true
	default:
		reaction.Action = "Monitor"
	}

	return reaction
}
