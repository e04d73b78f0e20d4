package darwin

import (
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// synergyPointsPerPip converts expectancy delta into synergy strength:
// every pip of paired-vs-solo edge moves the score 20 points off neutral.
const synergyPointsPerPip = 20.0

// CoalitionScorer compares outcomes of trades made jointly by multiple
// agents against solo trades
type CoalitionScorer struct{}

// NewCoalitionScorer creates a new coalition synergy scorer
func NewCoalitionScorer() *CoalitionScorer {
	return &CoalitionScorer{}
}

// Calculate splits trades into paired (non-empty coalition) and solo
// groups and measures whether coordination adds or destroys edge.
func (cs *CoalitionScorer) Calculate(trades []TradeRecord) CoalitionSynergy {
	var paired, solo []float64
	pairedLosses := 0

	for _, trade := range trades {
		if trade.HasCoalition() {
			paired = append(paired, trade.Pips)
			if trade.Pips < 0 {
				pairedLosses++
			}
		} else {
			solo = append(solo, trade.Pips)
		}
	}

	synergy := CoalitionSynergy{
		PairedTrades: len(paired),
		SoloTrades:   len(solo),
	}

	delta := formulas.Mean(paired) - formulas.Mean(solo)
	synergy.DeltaExpectancy = formulas.Round2(delta)

	if len(paired) > 0 {
		synergy.HarmRate = formulas.Round2(float64(pairedLosses) / float64(len(paired)))
	}

	// Neutral is 50; positive delta scales toward 100, negative toward 0
	strength := 50 + delta*synergyPointsPerPip
	synergy.SynergyStrength = formulas.Round2(formulas.Clamp(strength, 0, 100))

	return synergy
}
