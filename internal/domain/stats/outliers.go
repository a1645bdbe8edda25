package stats

// Outliers is the result of the 1.5*IQR fence rule.
type Outliers struct {
	Q1         float64   `json:"q1"`
	Q3         float64   `json:"q3"`
	IQR        float64   `json:"iqr"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
	Values     []float64 `json:"outliers"`
	Count      int       `json:"outlier_count"`
	Percentage float64   `json:"outlier_percentage"`
}

// IQROutliers flags values outside [Q1-1.5*IQR, Q3+1.5*IQR]. Flagged values
// keep their input order. An empty sample yields the zero result.
func IQROutliers(xs []float64) Outliers {
	if len(xs) == 0 {
		return Outliers{}
	}
	sorted := sortedCopy(xs)
	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	out := Outliers{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerBound: q1 - 1.5*iqr,
		UpperBound: q3 + 1.5*iqr,
	}
	for _, x := range xs {
		if x < out.LowerBound || x > out.UpperBound {
			out.Values = append(out.Values, x)
		}
	}
	out.Count = len(out.Values)
	out.Percentage = float64(out.Count) / float64(len(xs)) * 100
	return out
}
