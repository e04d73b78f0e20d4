package overlay

import (
	"math"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// Slope thresholds in pips per bucket; inside the band the advisory is HOLD
const slopeWarningThreshold = 0.3

// maxSlopeConfidence caps the advisory confidence - a slope is a two-bucket
// proxy, never certain enough for more
const maxSlopeConfidence = 90.0

// SlopeAdvisor emits per-pair expectancy trend advisories from the mid
// (50-trade) window slope
type SlopeAdvisor struct{}

// NewSlopeAdvisor creates a new expectancy slope advisor
func NewSlopeAdvisor() *SlopeAdvisor {
	return &SlopeAdvisor{}
}

// Calculate emits one warning per scored pair, in ranking order
func (sa *SlopeAdvisor) Calculate(state darwin.State) []SlopeWarning {
	warnings := make([]SlopeWarning, 0, len(state.Ranking))
	for _, pair := range state.Ranking {
		score, ok := state.Scores[pair]
		if !ok {
			continue
		}
		warnings = append(warnings, adviseOn(pair, score.Windows.Mid.ExpectancySlope))
	}
	return warnings
}

func adviseOn(pair string, slope float64) SlopeWarning {
	warning := SlopeWarning{
		Pair:       pair,
		Slope:      slope,
		Confidence: formulas.Round2(math.Min(maxSlopeConfidence, 50+20*math.Abs(slope))),
	}

	switch {
	case slope > slopeWarningThreshold:
		warning.Direction = SlopeRising
		warning.Suggestion = "Expectancy rising, consider increasing allocation"
	case slope < -slopeWarningThreshold:
		warning.Direction = SlopeFalling
		warning.Suggestion = "Expectancy falling, reduce trade frequency"
	default:
		warning.Direction = SlopeHolding
		warning.Suggestion = "Expectancy stable, hold current allocation"
	}

	return warning
}
