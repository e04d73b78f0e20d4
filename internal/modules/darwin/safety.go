package darwin

import (
	"time"

	"github.com/google/uuid"
)

// Minimum sample counts per check, so a handful of noisy trades cannot
// fire a demotion on their own.
const (
	minTradesForProfitFactor = 20
	minTradesForSlope        = 15
	minTradesForDrawdown     = 20
)

// SafetyGovernor is an independent rule set detecting risk degradation.
// Each check stands alone; multiple triggers may fire on the same pass.
type SafetyGovernor struct{}

// NewSafetyGovernor creates a new safety governor
func NewSafetyGovernor() *SafetyGovernor {
	return &SafetyGovernor{}
}

// Check runs the four safety rules against a pair's mid (50-trade) window
// and its coalition metrics
func (sg *SafetyGovernor) Check(pair string, mid RollingWindowMetrics, coalition CoalitionSynergy, thresholds SafetyThresholds, now time.Time) []SafetyTrigger {
	var triggers []SafetyTrigger

	if mid.TradeCount >= minTradesForProfitFactor && mid.ProfitFactor < thresholds.MinProfitFactor {
		triggers = append(triggers, newTrigger(TriggerProfitFactorLow, pair, mid.ProfitFactor, thresholds.MinProfitFactor, now))
	}

	if mid.TradeCount >= minTradesForSlope && mid.ExpectancySlope < 0 {
		triggers = append(triggers, newTrigger(TriggerExpSlopeNegative, pair, mid.ExpectancySlope, 0, now))
	}

	if mid.TradeCount >= minTradesForDrawdown && mid.DrawdownDensity > thresholds.MaxDrawdownDensity {
		triggers = append(triggers, newTrigger(TriggerDrawdownSpike, pair, mid.DrawdownDensity, thresholds.MaxDrawdownDensity, now))
	}

	if coalition.PairedTrades >= thresholds.MinPairedTrades && coalition.SynergyStrength < thresholds.MinCoalitionSynergy {
		triggers = append(triggers, newTrigger(TriggerCoalitionCollapse, pair, coalition.SynergyStrength, thresholds.MinCoalitionSynergy, now))
	}

	return triggers
}

func newTrigger(kind TriggerType, pair string, observed, threshold float64, now time.Time) SafetyTrigger {
	return SafetyTrigger{
		ID:        uuid.New().String(),
		Type:      kind,
		Pair:      pair,
		Observed:  observed,
		Threshold: threshold,
		FiredAt:   now,
	}
}
