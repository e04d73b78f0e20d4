package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

func indicatorScores(values map[string][]float64) (map[string]darwin.PairSurvivorshipScore, []string) {
	// Build one synthetic pair per value slot: PAIR0, PAIR1, ...
	scores := make(map[string]darwin.PairSurvivorshipScore)
	var ranking []string

	maxLen := 0
	for _, vals := range values {
		if len(vals) > maxLen {
			maxLen = len(vals)
		}
	}

	for i := 0; i < maxLen; i++ {
		pair := "PAIR" + string(rune('A'+i))
		var indicators []darwin.IndicatorSurvivorship
		for name, vals := range values {
			if i < len(vals) {
				indicators = append(indicators, darwin.IndicatorSurvivorship{
					Indicator:         name,
					SurvivorshipScore: vals[i],
				})
			}
		}
		scores[pair] = darwin.PairSurvivorshipScore{Pair: pair, Indicators: indicators}
		ranking = append(ranking, pair)
	}

	return scores, ranking
}

func TestIndicatorWeights_CompositeBlend(t *testing.T) {
	computer := NewIndicatorWeightComputer(&StubSource{Offset: 10})
	scores, ranking := indicatorScores(map[string][]float64{
		"macd_cross": {60, 70, 80},
	})

	weights := computer.Calculate(scores, ranking, 1)
	require.Contains(t, weights, "macd_cross")

	w := weights["macd_cross"]
	assert.Equal(t, 70.0, w.BacktestScore)
	assert.Equal(t, 80.0, w.LiveScore)
	assert.Equal(t, 76.0, w.CompositeWeight) // 0.4*70 + 0.6*80
	assert.Equal(t, IndicatorActive, w.Status)
}

func TestIndicatorWeights_StatusThresholds(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		offset float64
		status IndicatorStatus
	}{
		{"Disabled below 30", []float64{20, 20}, 0, IndicatorDisabled},
		{"Downgraded below 50", []float64{40, 40}, 0, IndicatorDowngraded},
		{"Active at 50 and above", []float64{50, 50}, 0, IndicatorActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			computer := NewIndicatorWeightComputer(&StubSource{Offset: tt.offset})
			scores, ranking := indicatorScores(map[string][]float64{"sig": tt.values})
			assert.Equal(t, tt.status, computer.Calculate(scores, ranking, 0)["sig"].Status)
		})
	}
}

func TestIndicatorWeights_TrendHysteresis(t *testing.T) {
	computer := NewIndicatorWeightComputer(&StubSource{})

	scores, ranking := indicatorScores(map[string][]float64{
		"improving": {50, 50, 60, 60},
		"stable":    {50, 51, 52, 52},
		"declining": {70, 70, 55, 55},
	})

	weights := computer.Calculate(scores, ranking, 0)
	assert.Equal(t, TrendImproving, weights["improving"].Trend)
	assert.Equal(t, TrendStable, weights["stable"].Trend, "gaps inside the hysteresis band stay stable")
	assert.Equal(t, TrendDeclining, weights["declining"].Trend)
}

func TestDriftSource_Deterministic(t *testing.T) {
	source := NewDriftSource()

	first := source.LiveScore("rsi_div", 60, 7)
	second := source.LiveScore("rsi_div", 60, 7)
	assert.Equal(t, first, second, "same indicator and epoch must repeat exactly")

	assert.GreaterOrEqual(t, first, 60-source.MaxDrift)
	assert.LessOrEqual(t, first, 60+source.MaxDrift)
}

func TestDriftSource_StaysInScoreRange(t *testing.T) {
	source := NewDriftSource()

	for epoch := 0; epoch < 50; epoch++ {
		low := source.LiveScore("sig", 2, epoch)
		high := source.LiveScore("sig", 98, epoch)
		assert.GreaterOrEqual(t, low, 0.0)
		assert.LessOrEqual(t, high, 100.0)
	}
}
