package darwin

import (
	"sort"

	"github.com/aristath/darwin-trader/pkg/formulas"
)

// minIndicatorSamples is the floor below which an indicator tag is
// excluded entirely - no neutral entry is emitted for thin samples.
const minIndicatorSamples = 10

// IndicatorScorer aggregates win-rate-derived reliability per technical
// indicator tag
type IndicatorScorer struct{}

// NewIndicatorScorer creates a new indicator survivorship scorer
func NewIndicatorScorer() *IndicatorScorer {
	return &IndicatorScorer{}
}

// Calculate scores every indicator tag seen on at least
// minIndicatorSamples trades. Results are sorted by tag for stable output.
func (is *IndicatorScorer) Calculate(trades []TradeRecord) []IndicatorSurvivorship {
	type tally struct {
		total int
		wins  int
	}
	tallies := make(map[string]*tally)

	for _, trade := range trades {
		for _, tag := range trade.Indicators {
			t, ok := tallies[tag]
			if !ok {
				t = &tally{}
				tallies[tag] = t
			}
			t.total++
			if trade.IsWin() {
				t.wins++
			}
		}
	}

	var scores []IndicatorSurvivorship
	for tag, t := range tallies {
		if t.total < minIndicatorSamples {
			continue
		}

		score := float64(t.wins) / float64(t.total) * 100
		scores = append(scores, IndicatorSurvivorship{
			Indicator:         tag,
			SampleCount:       t.total,
			SurvivorshipScore: formulas.Round2(score),
			StabilityWeight:   stabilityWeight(score),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Indicator < scores[j].Indicator
	})

	return scores
}

// stabilityWeight is informational only: strong tags weigh up, weak tags
// weigh down, the middle stays neutral.
func stabilityWeight(score float64) float64 {
	switch {
	case score > 70:
		return 1.1
	case score < 40:
		return 0.85
	default:
		return 1.0
	}
}
