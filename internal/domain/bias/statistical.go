// Package bias audits a population of scored applications for scoring bias.
// The statistical and heuristic passes are independent; Combine joins them.
package bias

import (
	"sort"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
)

// Thresholds.
const (
	HighVarianceStdDev   = 15.0
	OutlierRateThreshold = 10.0 // percent
	ParityRatioThreshold = 0.8
)

// Demographic attributes considered by the parity analysis.
const (
	AttributeGender    = "gender"
	AttributeEthnicity = "ethnicity"
	AttributeAgeGroup  = "age_group"
)

// Attributes returns the analyzed demographic attributes in order.
func Attributes() []string {
	return []string{AttributeGender, AttributeEthnicity, AttributeAgeGroup}
}

// Demographics maps attribute -> application id -> group label.
type Demographics map[string]map[string]string

// ApplicationScores are one application's current category scores and overall.
type ApplicationScores struct {
	ApplicationID string                     `json:"application_id"`
	Scores        map[model.Category]float64 `json:"scores"`
	Overall       float64                    `json:"overall"`
}

// CategoryAnalysis describes one category's distribution.
type CategoryAnalysis struct {
	Distribution stats.Summary  `json:"distribution"`
	Outliers     stats.Outliers `json:"outliers"`
}

// VarianceAnalysis describes the spread of overall scores.
type VarianceAnalysis struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	CV           float64 `json:"coefficient_of_variation"`
	Range        float64 `json:"range"`
	HighVariance bool    `json:"is_high_variance"`
}

// ParityAnalysis compares overall scores across the groups of one attribute.
type ParityAnalysis struct {
	Attribute     string             `json:"attribute"`
	GroupMeans    map[string]float64 `json:"group_means"`
	GroupSizes    map[string]int     `json:"group_sizes"`
	MaxDifference float64            `json:"max_difference"`
	// ANOVA is nil when some group has a single sample.
	ANOVA       *stats.ANOVAResult `json:"anova,omitempty"`
	Significant bool               `json:"is_statistically_significant"`
	ParityRatio float64            `json:"parity_ratio"`
}

// StatisticalAnalysis is the deterministic half of a bias audit.
type StatisticalAnalysis struct {
	Categories map[model.Category]CategoryAnalysis `json:"categories"`
	Variance   *VarianceAnalysis                   `json:"variance_analysis,omitempty"`
	// Parity follows Attributes order; attributes with fewer than two groups are absent.
	Parity []ParityAnalysis `json:"demographic_parity,omitempty"`
}

// AnalyzeStatistics runs the distribution, outlier, variance and parity analyses.
func AnalyzeStatistics(apps []ApplicationScores, demographics Demographics) StatisticalAnalysis {
	out := StatisticalAnalysis{Categories: make(map[model.Category]CategoryAnalysis)}

	for _, c := range model.Categories() {
		var xs []float64
		for _, a := range apps {
			if v, ok := a.Scores[c]; ok {
				xs = append(xs, v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		out.Categories[c] = CategoryAnalysis{
			Distribution: stats.Describe(xs),
			Outliers:     stats.IQROutliers(xs),
		}
	}

	if len(apps) > 0 {
		overall := make([]float64, len(apps))
		for i, a := range apps {
			overall[i] = a.Overall
		}
		s := stats.Describe(overall)
		out.Variance = &VarianceAnalysis{
			Mean:         s.Mean,
			StdDev:       s.Std,
			CV:           stats.CoefficientOfVariation(overall),
			Range:        s.Max - s.Min,
			HighVariance: s.Std > HighVarianceStdDev,
		}
	}

	if len(demographics) > 0 {
		out.Parity = demographicParity(apps, demographics)
	}
	return out
}

func demographicParity(apps []ApplicationScores, demographics Demographics) []ParityAnalysis {
	overall := make(map[string]float64, len(apps))
	for _, a := range apps {
		overall[a.ApplicationID] = a.Overall
	}

	var out []ParityAnalysis
	for _, attr := range Attributes() {
		labels, ok := demographics[attr]
		if !ok {
			continue
		}
		groups := make(map[string][]float64)
		for _, a := range apps {
			if g, ok := labels[a.ApplicationID]; ok {
				groups[g] = append(groups[g], overall[a.ApplicationID])
			}
		}
		if len(groups) < 2 {
			continue
		}

		names := make([]string, 0, len(groups))
		for g := range groups {
			names = append(names, g)
		}
		sort.Strings(names)

		p := ParityAnalysis{
			Attribute:  attr,
			GroupMeans: make(map[string]float64, len(groups)),
			GroupSizes: make(map[string]int, len(groups)),
		}
		samples := make([][]float64, 0, len(names))
		minMean, maxMean := 0.0, 0.0
		for i, g := range names {
			m := stats.Mean(groups[g])
			p.GroupMeans[g] = m
			p.GroupSizes[g] = len(groups[g])
			samples = append(samples, groups[g])
			if i == 0 || m < minMean {
				minMean = m
			}
			if i == 0 || m > maxMean {
				maxMean = m
			}
		}
		p.MaxDifference = maxMean - minMean
		if maxMean > 0 {
			p.ParityRatio = minMean / maxMean
		}
		if res, ok := stats.OneWayANOVA(samples); ok {
			p.ANOVA = &res
			p.Significant = res.Significant
		}
		out = append(out, p)
	}
	return out
}
