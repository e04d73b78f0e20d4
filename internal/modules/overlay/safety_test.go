package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

func TestSafetyReactor_OneReactionPerActiveTrigger(t *testing.T) {
	rebalancedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	state := darwin.State{
		LastRebalance: rebalancedAt,
		Triggers: []darwin.SafetyTrigger{
			{Type: darwin.TriggerProfitFactorLow, Pair: "EURUSD", FiredAt: rebalancedAt},
			{Type: darwin.TriggerDrawdownSpike, Pair: "GBPUSD", FiredAt: rebalancedAt},
			{Type: darwin.TriggerCoalitionCollapse, Pair: "USDJPY", FiredAt: rebalancedAt.Add(-time.Hour)},
		},
	}

	reactions := NewSafetyReactor().Calculate(state)
	require.Len(t, reactions, 2, "historical triggers are skipped")

	byPair := map[string]SafetyReaction{}
	for _, r := range reactions {
		byPair[r.Trigger.Pair] = r
	}

	assert.Equal(t, 0.5, byPair["EURUSD"].CapitalReduction)
	assert.False(t, byPair["EURUSD"].RestrictToTopAgent)

	assert.Equal(t, 0.6, byPair["GBPUSD"].CapitalReduction)
	assert.True(t, byPair["GBPUSD"].RestrictToTopAgent)
}

func TestSafetyReactor_CoalitionCollapseFreezes(t *testing.T) {
	now := time.Now()
	state := darwin.State{
		LastRebalance: now,
		Triggers: []darwin.SafetyTrigger{
			{Type: darwin.TriggerCoalitionCollapse, Pair: "EURUSD", FiredAt: now},
		},
	}

	reactions := NewSafetyReactor().Calculate(state)
	require.Len(t, reactions, 1)
	assert.True(t, reactions[0].FreezeCoalitions)
	assert.Equal(t, 0.4, reactions[0].CapitalReduction)

	live := EmptyLiveState()
	live.Reactions = reactions
	assert.True(t, live.CoalitionsFrozen())
}

func TestSlopeAdvisor_Directions(t *testing.T) {
	state := darwin.State{
		Ranking: []string{"EURUSD", "GBPUSD", "USDJPY"},
		Scores: map[string]darwin.PairSurvivorshipScore{
			"EURUSD": {Windows: darwin.WindowSet{Mid: darwin.RollingWindowMetrics{ExpectancySlope: 1.2}}},
			"GBPUSD": {Windows: darwin.WindowSet{Mid: darwin.RollingWindowMetrics{ExpectancySlope: 0.1}}},
			"USDJPY": {Windows: darwin.WindowSet{Mid: darwin.RollingWindowMetrics{ExpectancySlope: -0.8}}},
		},
	}

	warnings := NewSlopeAdvisor().Calculate(state)
	require.Len(t, warnings, 3)

	assert.Equal(t, SlopeRising, warnings[0].Direction)
	assert.Equal(t, SlopeHolding, warnings[1].Direction)
	assert.Equal(t, SlopeFalling, warnings[2].Direction)

	// Confidence grows with the slope magnitude but never hits certainty
	assert.Equal(t, 74.0, warnings[0].Confidence)
	assert.Equal(t, 52.0, warnings[1].Confidence)
	for _, w := range warnings {
		assert.LessOrEqual(t, w.Confidence, 90.0)
	}
}

func TestLiveState_TopAgent(t *testing.T) {
	live := EmptyLiveState()
	assert.Empty(t, live.TopAgent())

	live.Agents = map[string]AgentAuthority{
		"a": {AgentID: "a", Score: 80, Role: RoleFullTrade},
		"b": {AgentID: "b", Score: 92, Role: RoleConfirmationOnly},
		"c": {AgentID: "c", Score: 75, Role: RoleFullTrade},
	}
	assert.Equal(t, "a", live.TopAgent(), "confirmation-only agents cannot be top agent")
}
