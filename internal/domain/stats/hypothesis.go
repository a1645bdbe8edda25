package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SignificanceLevel is the p-value below which a test counts as significant.
const SignificanceLevel = 0.05

// ANOVAResult is a one-way analysis of variance.
type ANOVAResult struct {
	F           float64 `json:"f_statistic"`
	P           float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// OneWayANOVA runs an F-test across groups. It needs at least two groups
// and every group must hold more than one value; ok is false otherwise.
// Zero within-group variance gives F=+Inf and p=0 when the group means
// differ, and p=1 when every value is identical.
func OneWayANOVA(groups [][]float64) (res ANOVAResult, ok bool) {
	if len(groups) < 2 {
		return ANOVAResult{}, false
	}
	var all []float64
	for _, g := range groups {
		if len(g) < 2 {
			return ANOVAResult{}, false
		}
		all = append(all, g...)
	}
	grand := stat.Mean(all, nil)

	var ssb, ssw float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, x := range g {
			ssw += (x - m) * (x - m)
		}
	}
	dfb := float64(len(groups) - 1)
	dfw := float64(len(all) - len(groups))

	switch {
	case ssw == 0 && ssb == 0:
		res = ANOVAResult{F: math.NaN(), P: 1}
	case ssw == 0:
		res = ANOVAResult{F: math.Inf(1), P: 0}
	default:
		f := (ssb / dfb) / (ssw / dfw)
		res = ANOVAResult{F: f, P: distuv.F{D1: dfb, D2: dfw}.Survival(f)}
	}
	res.Significant = res.P < SignificanceLevel
	return res, true
}

// PearsonResult is a correlation coefficient with its two-sided p-value.
type PearsonResult struct {
	R           float64 `json:"correlation"`
	P           float64 `json:"p_value"`
	N           int     `json:"sample_size"`
	Significant bool    `json:"significant"`
}

// Pearson correlates paired samples. It needs at least three pairs and
// non-constant inputs; ok is false otherwise.
func Pearson(x, y []float64) (res PearsonResult, ok bool) {
	n := len(x)
	if n != len(y) || n < 3 {
		return PearsonResult{}, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return PearsonResult{}, false
	}
	r = Clamp(r, -1, 1)
	res = PearsonResult{R: r, N: n}
	if math.Abs(r) == 1 {
		res.P = 0
	} else {
		df := float64(n - 2)
		t := r * math.Sqrt(df/(1-r*r))
		res.P = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))
	}
	res.Significant = res.P < SignificanceLevel
	return res, true
}
