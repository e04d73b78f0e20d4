package darwin

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/darwin-trader/pkg/logger"
)

// healthyPairTrades builds 50 trades averaging +1.8 pips: 45 wins of +2.1
// with a loss of -0.9 every tenth trade, tight spreads, full coalition and
// indicator coverage. Loss placement keeps the mid-window slope positive.
func healthyPairTrades() []TradeRecord {
	base := time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC)
	trades := make([]TradeRecord, 50)
	for i := range trades {
		pips := 2.1
		if i%10 == 4 { // Indices 4, 14, 24, 34, 44
			pips = -0.9
		}
		trades[i] = TradeRecord{
			Pair:       "EURUSD",
			Pips:       pips,
			Session:    "london",
			AgentID:    "agent-1",
			SpreadPips: 0.2,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
			Coalition:  []string{"agent-1", "agent-2"},
			Indicators: []string{"trend_follower"},
		}
	}
	return trades
}

// bleedingPairTrades builds 30 straight losses with wide spreads
func bleedingPairTrades() []TradeRecord {
	base := time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC)
	trades := make([]TradeRecord, 30)
	for i := range trades {
		trades[i] = TradeRecord{
			Pair:       "GBPJPY",
			Pips:       -5,
			Session:    "asia",
			AgentID:    "agent-3",
			SpreadPips: 2,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return trades
}

func TestAssembler_HealthyPairReachesAlpha(t *testing.T) {
	assembler := NewAssembler(logger.Nop())
	cfg := DefaultConfig()

	eval := assembler.EvaluatePair("EURUSD", healthyPairTrades(), TierExtinction, cfg, time.Now())
	score := eval.Score

	require.Empty(t, eval.Triggers, "healthy pair should fire no safety triggers")
	assert.Equal(t, TierAlpha, score.Tier)
	assert.GreaterOrEqual(t, score.OverallScore, cfg.Tiers.AlphaMin)
	assert.LessOrEqual(t, score.OverallScore, 100.0)
	assert.GreaterOrEqual(t, score.Multiplier, cfg.Multipliers.Alpha.Min)
	assert.LessOrEqual(t, score.Multiplier, cfg.Multipliers.Alpha.Max)

	assert.InDelta(t, 1.8, score.Windows.Mid.Expectancy, 0.01)
	assert.Greater(t, score.Windows.Mid.ExpectancySlope, 0.0)

	require.NotNil(t, eval.Transition, "first evaluation should record the tier change")
	assert.Equal(t, TierExtinction, eval.Transition.FromTier)
	assert.Equal(t, TierAlpha, eval.Transition.ToTier)
	assert.Equal(t, "Score improvement", eval.Transition.Reason)
}

func TestAssembler_BleedingPairGoesExtinct(t *testing.T) {
	assembler := NewAssembler(logger.Nop())
	cfg := DefaultConfig()

	eval := assembler.EvaluatePair("GBPJPY", bleedingPairTrades(), TierGamma, cfg, time.Now())
	score := eval.Score

	assert.Equal(t, TierExtinction, score.Tier)
	assert.Zero(t, score.Multiplier, "EXTINCTION must always carry a zero multiplier")
	assert.GreaterOrEqual(t, score.OverallScore, 0.0)
}

func TestAssembler_SafetyTriggerDemotesOneLevel(t *testing.T) {
	assembler := NewAssembler(logger.Nop())
	trades := healthyPairTrades()
	now := time.Now()

	clean := DefaultConfig()
	untriggered := assembler.EvaluatePair("EURUSD", trades, TierAlpha, clean, now)
	require.Equal(t, TierAlpha, untriggered.Score.Tier)

	// Force PF_LOW by demanding an unreachable profit factor
	strict := DefaultConfig()
	strict.Safety.MinProfitFactor = 150

	triggered := assembler.EvaluatePair("EURUSD", trades, TierAlpha, strict, now)
	require.NotEmpty(t, triggered.Triggers)
	assert.Equal(t, TriggerProfitFactorLow, triggered.Triggers[0].Type)
	assert.Equal(t, TierBeta, triggered.Score.Tier, "one fired trigger demotes exactly one level")
	assert.Less(t, triggered.Score.Tier.Rank(), untriggered.Score.Tier.Rank())

	// The demoted pair's multiplier stays inside the BETA band
	assert.GreaterOrEqual(t, triggered.Score.Multiplier, strict.Multipliers.Beta.Min)
	assert.LessOrEqual(t, triggered.Score.Multiplier, strict.Multipliers.Beta.Max)

	// Transition reason names the fired trigger
	require.NotNil(t, triggered.Transition)
	assert.Equal(t, "PF_LOW", triggered.Transition.Reason)
}

func TestAssembler_NoTransitionWhenTierUnchanged(t *testing.T) {
	assembler := NewAssembler(logger.Nop())
	eval := assembler.EvaluatePair("EURUSD", healthyPairTrades(), TierAlpha, DefaultConfig(), time.Now())
	assert.Nil(t, eval.Transition)
}

func TestTierMultiplier_EqualThresholdsDoNotDivideByZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiers.AlphaMin = 80
	cfg.Tiers.BetaMin = 80 // Degenerate band, reachable via safety demotion

	m := tierMultiplier(85, TierBeta, cfg)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		t.Fatalf("Multiplier = %v, want a finite value", m)
	}
	assert.Equal(t, cfg.Multipliers.Beta.Max, m, "score above a zero-width band clamps to the band max")

	m = tierMultiplier(80, TierBeta, cfg)
	assert.Equal(t, cfg.Multipliers.Beta.Min, m, "score at the band floor takes the band min")
}

func TestClassifyTier(t *testing.T) {
	thresholds := DefaultConfig().Tiers
	tests := []struct {
		score    float64
		expected Tier
	}{
		{90, TierAlpha},
		{75, TierAlpha},
		{74.99, TierBeta},
		{55, TierBeta},
		{54.99, TierGamma},
		{35, TierGamma},
		{34.99, TierExtinction},
		{0, TierExtinction},
	}

	for _, tt := range tests {
		if got := classifyTier(tt.score, thresholds); got != tt.expected {
			t.Errorf("classifyTier(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}
