package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) <= 1 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance (n-1 denominator) of a slice
// of float64 values. Returns 0 for fewer than two samples.
func Variance(data []float64) float64 {
	if len(data) <= 1 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Sum calculates the total of a slice of float64 values
func Sum(data []float64) float64 {
	total := 0.0
	for _, v := range data {
		total += v
	}
	return total
}

// Clamp constrains a value to the [min, max] range
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// Round2 rounds to 2 decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Round3 rounds to 3 decimal places
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// SplitTrend calculates a fast two-bucket trend proxy: the mean of the
// second half of the series minus the mean of the first half. Positive
// means improving, negative means degrading. Not a regression - it is
// deliberately cheap so it can run on every evaluation pass.
func SplitTrend(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	mid := len(data) / 2
	return Mean(data[mid:]) - Mean(data[:mid])
}
