package formulas

// DrawdownMetrics represents drawdown analysis over a cumulative P&L curve
type DrawdownMetrics struct {
	MaxDrawdown float64 `json:"max_drawdown"` // Deepest peak-to-trough distance, in the curve's own units
	Density     float64 `json:"density"`      // Fraction of samples spent below the running peak
}

// CalculateDrawdown walks a cumulative P&L curve tracking the running peak.
//
// Drawdown Formula:
//   Drawdown[i] = Peak[0..i] - Value[i]
//   Max Drawdown = Maximum of all drawdowns
//
// Density is the fraction of samples where the curve sits below its peak,
// a cheap measure of how persistently the curve is underwater.
//
// Args:
//   values: cumulative P&L curve (running sum of per-trade pips)
//
// Returns:
//   DrawdownMetrics; zero-valued for fewer than two samples
func CalculateDrawdown(values []float64) DrawdownMetrics {
	if len(values) < 2 {
		return DrawdownMetrics{}
	}

	maxDrawdown := 0.0
	belowPeak := 0
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}

		drawdown := peak - v
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
		if drawdown > 0 {
			belowPeak++
		}
	}

	return DrawdownMetrics{
		MaxDrawdown: maxDrawdown,
		Density:     float64(belowPeak) / float64(len(values)),
	}
}

// CumulativeCurve converts per-trade results into a running-sum curve
func CumulativeCurve(results []float64) []float64 {
	curve := make([]float64, len(results))
	total := 0.0
	for i, r := range results {
		total += r
		curve[i] = total
	}
	return curve
}
