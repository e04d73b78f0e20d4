package overlay

import (
	"hash/fnv"
	"strconv"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// Indicator status thresholds on the composite weight
const (
	indicatorDisabledBelow   = 30.0
	indicatorDowngradedBelow = 50.0
)

// trendHysteresis keeps an indicator STABLE until the first-half vs
// second-half gap clears 3 points, so the trend label does not flap.
const trendHysteresis = 3.0

// LiveIndicatorSource supplies a live reliability score for an indicator
// given its backtest survivorship. Production wires a deterministic drift
// model; tests inject a fixed stub. The scoring core itself must never
// consume non-deterministic noise.
type LiveIndicatorSource interface {
	LiveScore(indicator string, backtestScore float64, epoch int) float64
}

// DriftSource models live telemetry as a bounded perturbation of the
// backtest score, derived from an FNV-1a hash of the indicator id and the
// rebalance epoch. Identical inputs always give identical scores.
type DriftSource struct {
	// MaxDrift bounds the perturbation in score points
	MaxDrift float64
}

// NewDriftSource creates the default deterministic live source
func NewDriftSource() *DriftSource {
	return &DriftSource{MaxDrift: 12}
}

// LiveScore returns the perturbed backtest score, clamped to [0, 100]
func (ds *DriftSource) LiveScore(indicator string, backtestScore float64, epoch int) float64 {
	h := fnv.New64a()
	h.Write([]byte(indicator))
	h.Write([]byte(strconv.Itoa(epoch)))

	// Map the hash onto [-MaxDrift, +MaxDrift]
	unit := float64(h.Sum64()%10000)/9999*2 - 1
	return formulas.Clamp(backtestScore+unit*ds.MaxDrift, 0, 100)
}

// StubSource returns the backtest score shifted by a fixed offset; for tests
type StubSource struct {
	Offset float64
}

// LiveScore returns backtest plus the fixed offset, clamped to [0, 100]
func (ss *StubSource) LiveScore(indicator string, backtestScore float64, epoch int) float64 {
	return formulas.Clamp(backtestScore+ss.Offset, 0, 100)
}

// IndicatorWeightComputer blends backtest survivorship with live scores
// into composite indicator weights
type IndicatorWeightComputer struct {
	live LiveIndicatorSource
}

// NewIndicatorWeightComputer creates a computer backed by the given live source
func NewIndicatorWeightComputer(live LiveIndicatorSource) *IndicatorWeightComputer {
	return &IndicatorWeightComputer{live: live}
}

// Calculate aggregates each indicator's per-pair survivorship across all
// scored pairs, blends in the live score and grades status and trend.
func (ic *IndicatorWeightComputer) Calculate(scores map[string]darwin.PairSurvivorshipScore, ranking []string, epoch int) map[string]IndicatorWeight {
	// Collect each indicator's survivorship values in ranking order so the
	// first-half/second-half trend split is deterministic
	perIndicator := make(map[string][]float64)
	for _, pair := range ranking {
		score, ok := scores[pair]
		if !ok {
			continue
		}
		for _, ind := range score.Indicators {
			perIndicator[ind.Indicator] = append(perIndicator[ind.Indicator], ind.SurvivorshipScore)
		}
	}

	weights := make(map[string]IndicatorWeight, len(perIndicator))
	for indicator, values := range perIndicator {
		backtest := formulas.Round2(formulas.Mean(values))
		live := formulas.Round2(ic.live.LiveScore(indicator, backtest, epoch))
		composite := formulas.Round2(0.4*backtest + 0.6*live)

		weights[indicator] = IndicatorWeight{
			Indicator:       indicator,
			BacktestScore:   backtest,
			LiveScore:       live,
			CompositeWeight: composite,
			Trend:           indicatorTrend(values),
			Status:          indicatorStatus(composite),
		}
	}

	return weights
}

func indicatorStatus(composite float64) IndicatorStatus {
	switch {
	case composite < indicatorDisabledBelow:
		return IndicatorDisabled
	case composite < indicatorDowngradedBelow:
		return IndicatorDowngraded
	default:
		return IndicatorActive
	}
}

func indicatorTrend(values []float64) IndicatorTrend {
	diff := formulas.SplitTrend(values)
	switch {
	case diff > trendHysteresis:
		return TrendImproving
	case diff < -trendHysteresis:
		return TrendDeclining
	default:
		return TrendStable
	}
}
