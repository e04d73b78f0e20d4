package darwin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/darwin-trader/pkg/logger"
)

func repeatPair(trades []TradeRecord, pair string) []TradeRecord {
	out := make([]TradeRecord, len(trades))
	copy(out, trades)
	for i := range out {
		out[i].Pair = pair
	}
	return out
}

func TestStore_CapitalDistributionSumsTo100(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())

	state := store.Evaluate(map[string][]TradeRecord{
		"EURUSD": healthyPairTrades(),
		"USDJPY": repeatPair(healthyPairTrades(), "USDJPY"),
		"GBPJPY": bleedingPairTrades(),
	})

	sum := 0.0
	for _, pct := range state.CapitalDistribution {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 0.1)

	// The extinct pair holds no capital
	assert.Zero(t, state.CapitalDistribution["GBPJPY"])
}

func TestStore_AllExtinctMeansZeroDistribution(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())

	state := store.Evaluate(map[string][]TradeRecord{
		"GBPJPY": bleedingPairTrades(),
	})

	for pair, pct := range state.CapitalDistribution {
		assert.Zerof(t, pct, "pair %s should hold no capital", pair)
	}
	assert.Zero(t, state.SystemHealthScore, "no surviving pairs means zero health")
}

func TestStore_SystemHealthIgnoresExtinctPairs(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())

	state := store.Evaluate(map[string][]TradeRecord{
		"EURUSD": healthyPairTrades(),
		"GBPJPY": bleedingPairTrades(),
	})

	healthy := state.Scores["EURUSD"]
	assert.InDelta(t, healthy.OverallScore, state.SystemHealthScore, 0.01,
		"health should equal the lone surviving pair's score")
}

func TestStore_EvaluateIsPure(t *testing.T) {
	config := NewConfigStore(logger.Nop())
	input := map[string][]TradeRecord{
		"EURUSD": healthyPairTrades(),
		"GBPJPY": bleedingPairTrades(),
	}

	first := NewStore(config, logger.Nop()).Evaluate(input)
	second := NewStore(config, logger.Nop()).Evaluate(input)

	require.Equal(t, len(first.Scores), len(second.Scores))
	for pair, a := range first.Scores {
		b := second.Scores[pair]
		assert.Equal(t, a.OverallScore, b.OverallScore, pair)
		assert.Equal(t, a.Tier, b.Tier, pair)
		assert.Equal(t, a.Multiplier, b.Multiplier, pair)
		assert.Equal(t, a.Components, b.Components, pair)
	}
	assert.Equal(t, first.Ranking, second.Ranking)
}

func TestStore_RankingIsScoreDescending(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())

	state := store.Evaluate(map[string][]TradeRecord{
		"EURUSD": healthyPairTrades(),
		"GBPJPY": bleedingPairTrades(),
	})

	require.Len(t, state.Ranking, 2)
	assert.Equal(t, "EURUSD", state.Ranking[0])
	assert.Equal(t, "GBPJPY", state.Ranking[1])
}

func TestStore_TransitionUsesPreviousTierContext(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())
	input := map[string][]TradeRecord{"EURUSD": healthyPairTrades()}

	first := store.Evaluate(input)
	require.Len(t, first.Transitions, 1, "unknown pair starts from EXTINCTION")
	assert.Equal(t, TierExtinction, first.Transitions[0].FromTier)
	assert.Equal(t, TierAlpha, first.Transitions[0].ToTier)

	second := store.Evaluate(input)
	assert.Len(t, second.Transitions, 1, "same tier on re-evaluation adds no transition")
}

func TestStore_Reset(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())
	store.Evaluate(map[string][]TradeRecord{"EURUSD": healthyPairTrades()})

	store.Reset()
	state := store.Snapshot()

	assert.Empty(t, state.Scores)
	assert.Empty(t, state.Transitions)
	assert.Empty(t, state.Triggers)
	assert.True(t, state.LastRebalance.IsZero())
}

func TestStore_ScoresStayInRange(t *testing.T) {
	store := NewStore(NewConfigStore(logger.Nop()), logger.Nop())
	cfg := DefaultConfig()

	state := store.Evaluate(map[string][]TradeRecord{
		"EURUSD": healthyPairTrades(),
		"USDJPY": repeatPair(bleedingPairTrades(), "USDJPY"),
		"AUDUSD": repeatPair(healthyPairTrades()[:7], "AUDUSD"),
	})

	for pair, score := range state.Scores {
		if score.OverallScore < 0 || score.OverallScore > 100 {
			t.Errorf("%s OverallScore = %v, outside [0,100]", pair, score.OverallScore)
		}
		if score.Multiplier < 0 || score.Multiplier > cfg.Multipliers.Alpha.Max {
			t.Errorf("%s Multiplier = %v, outside [0,%v]", pair, score.Multiplier, cfg.Multipliers.Alpha.Max)
		}
		if score.Tier == TierExtinction && score.Multiplier != 0 {
			t.Errorf("%s is EXTINCTION with multiplier %v", pair, score.Multiplier)
		}
		if math.IsNaN(score.OverallScore) {
			t.Errorf("%s score is NaN", pair)
		}
	}
}
