package darwin

import (
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// profitFactorCap is the sentinel returned when a window has gross profit
// but zero gross loss - effectively infinite edge, capped for display.
const profitFactorCap = 99

// WindowCalculator derives point statistics over the most recent N trades
// of a pair
type WindowCalculator struct{}

// NewWindowCalculator creates a new rolling window calculator
func NewWindowCalculator() *WindowCalculator {
	return &WindowCalculator{}
}

// Calculate computes metrics over the last windowSize trades of an
// oldest-to-newest ordered list. Fewer trades than the window means the
// whole list is used. An empty list returns a zeroed result, not an error.
func (wc *WindowCalculator) Calculate(trades []TradeRecord, windowSize int) RollingWindowMetrics {
	metrics := RollingWindowMetrics{WindowSize: windowSize}
	if len(trades) == 0 || windowSize <= 0 {
		return metrics
	}

	window := trades
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	metrics.TradeCount = len(window)

	pips := make([]float64, len(window))
	spreads := make([]float64, len(window))
	grossProfit := 0.0
	grossLoss := 0.0
	wins := 0

	for i, trade := range window {
		pips[i] = trade.Pips
		spreads[i] = trade.SpreadPips

		if trade.Pips > 0 {
			grossProfit += trade.Pips
			wins++
		} else {
			grossLoss += -trade.Pips
		}
	}

	drawdown := formulas.CalculateDrawdown(formulas.CumulativeCurve(pips))

	metrics.Expectancy = formulas.Round2(formulas.Mean(pips))
	metrics.AveragePips = metrics.Expectancy
	metrics.ExpectancySlope = formulas.Round2(formulas.SplitTrend(pips))
	metrics.ProfitFactor = formulas.Round2(profitFactor(grossProfit, grossLoss))
	metrics.WinRate = formulas.Round2(float64(wins) / float64(len(window)))
	metrics.MaxDrawdown = formulas.Round2(drawdown.MaxDrawdown)
	metrics.DrawdownDensity = formulas.Round2(drawdown.Density)
	metrics.ExpectancyVariance = formulas.Round2(formulas.Variance(pips))
	metrics.FrictionDrag = formulas.Round2(formulas.Mean(spreads))

	return metrics
}

// CalculateSet computes the three standard windows in one pass
func (wc *WindowCalculator) CalculateSet(trades []TradeRecord, cfg Config) WindowSet {
	return WindowSet{
		Short: wc.Calculate(trades, cfg.WindowShort),
		Mid:   wc.Calculate(trades, cfg.WindowMid),
		Long:  wc.Calculate(trades, cfg.WindowLong),
	}
}

// profitFactor is gross profit over gross loss. Zero loss with profit
// returns the cap sentinel; zero on both sides returns 0.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCap
		}
		return 0
	}
	return grossProfit / grossLoss
}
