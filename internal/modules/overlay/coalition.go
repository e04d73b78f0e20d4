package overlay

import (
	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

// Harm-rate bands for coalition permissions. At blockedHarmRate the
// coalition is blocked outright regardless of its expectancy edge.
const (
	boostedHarmRate = 0.20
	neutralHarmRate = 0.40
	blockedHarmRate = 0.60
)

// Authority multipliers per permission grade
const (
	boostedMultiplier = 1.2
	neutralMultiplier = 1.0
	reducedMultiplier = 0.6
)

// CoalitionComputer grades per-pair coalition trading permission from the
// latest synergy snapshots
type CoalitionComputer struct{}

// NewCoalitionComputer creates a new coalition reinforcement computer
func NewCoalitionComputer() *CoalitionComputer {
	return &CoalitionComputer{}
}

// Calculate derives reinforcement for every scored pair
func (cc *CoalitionComputer) Calculate(scores map[string]darwin.PairSurvivorshipScore) map[string]CoalitionReinforcement {
	reinforcements := make(map[string]CoalitionReinforcement, len(scores))
	for pair, score := range scores {
		reinforcements[pair] = gradeCoalition(pair, score.Coalition)
	}
	return reinforcements
}

func gradeCoalition(pair string, synergy darwin.CoalitionSynergy) CoalitionReinforcement {
	reinforcement := CoalitionReinforcement{
		Pair:            pair,
		DeltaExpectancy: synergy.DeltaExpectancy,
		HarmRate:        synergy.HarmRate,
	}

	switch {
	case synergy.HarmRate >= blockedHarmRate:
		// Blocking overrides everything, even a positive delta
		reinforcement.Permission = CoalitionBlocked
		reinforcement.AuthorityMultiplier = 0
	case synergy.DeltaExpectancy > 0 && synergy.HarmRate < boostedHarmRate:
		reinforcement.Permission = CoalitionBoosted
		reinforcement.AuthorityMultiplier = boostedMultiplier
	case synergy.DeltaExpectancy > 0 && synergy.HarmRate < neutralHarmRate:
		reinforcement.Permission = CoalitionNeutral
		reinforcement.AuthorityMultiplier = neutralMultiplier
	default:
		reinforcement.Permission = CoalitionReduced
		reinforcement.AuthorityMultiplier = reducedMultiplier
	}

	return reinforcement
}
