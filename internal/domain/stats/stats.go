// Package stats holds the numeric kernels shared by the scoring analyses:
// descriptive summaries, quantiles, IQR outliers, one-way ANOVA, Pearson
// correlation and normal critical values.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes a sample. Std is the sample standard deviation and is
// zero for fewer than two values.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe summarizes xs. An empty sample yields the zero Summary.
func Describe(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := sortedCopy(xs)
	return Summary{
		Count:  len(xs),
		Mean:   stat.Mean(xs, nil),
		Median: quantileSorted(sorted, 0.5),
		Std:    StdDev(xs),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// Mean returns the arithmetic mean, or zero for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample (n-1) standard deviation, or zero below two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// CoefficientOfVariation returns std/mean, or zero when the mean is zero.
func CoefficientOfVariation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return StdDev(xs) / m
}

// Quantile returns the p-quantile of xs using linear interpolation between
// closest ranks: position p*(n-1) over the sorted sample.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return quantileSorted(sortedCopy(xs), p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// Clamp bounds x to [lo,hi]. NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

// ZCritical returns the two-sided standard normal critical value for a
// confidence level in (0,1), i.e. the (1-alpha/2) quantile.
func ZCritical(level float64) float64 {
	alpha := 1 - level
	return distuv.UnitNormal.Quantile(1 - alpha/2)
}
