package bias

import (
	"fmt"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
)

// Risk contributions.
const (
	riskHighVariance   = 0.2
	riskOutlierRate    = 0.1
	riskSignificantGap = 0.3
	riskLowParity      = 0.2
	riskFairnessScale  = 0.5

	// FairnessFactorThreshold is the fairness score under which the heuristic
	// pass is named as a risk factor.
	FairnessFactorThreshold = 0.7

	RiskHighThreshold   = 0.7
	RiskMediumThreshold = 0.4
)

// Risk factor labels.
const (
	FactorHighVariance = "High variance in scores"
	FactorAIPatterns   = "AI detected potential bias patterns"
)

// Combine folds both passes into a risk assessment. It is pure and monotone:
// adding a factor never lowers the risk score.
func Combine(s StatisticalAnalysis, h HeuristicAnalysis) model.BiasAssessment {
	var risk float64
	factors := []string{}

	if s.Variance != nil && s.Variance.HighVariance {
		risk += riskHighVariance
		factors = append(factors, FactorHighVariance)
	}
	for _, c := range model.Categories() {
		a, ok := s.Categories[c]
		if ok && a.Outliers.Percentage > OutlierRateThreshold {
			risk += riskOutlierRate
			factors = append(factors, fmt.Sprintf("High outlier rate in %s", c))
		}
	}
	for _, p := range s.Parity {
		if p.Significant {
			risk += riskSignificantGap
			factors = append(factors, fmt.Sprintf("Significant demographic disparity in %s", p.Attribute))
		}
		if p.ParityRatio < ParityRatioThreshold {
			risk += riskLowParity
			factors = append(factors, fmt.Sprintf("Low parity ratio for %s", p.Attribute))
		}
	}

	fairness := stats.Clamp(h.FairnessScore, 0, 1)
	risk += (1 - fairness) * riskFairnessScale
	if fairness < FairnessFactorThreshold {
		factors = append(factors, FactorAIPatterns)
	}

	risk = stats.Round(stats.Clamp(risk, 0, 1), 3)
	level := RiskLevelFor(risk)
	return model.BiasAssessment{
		RiskScore:      risk,
		RiskLevel:      level,
		RiskFactors:    factors,
		RequiresReview: level != model.RiskLow,
	}
}

// RiskLevelFor bands a risk score.
func RiskLevelFor(risk float64) model.RiskLevel {
	switch {
	case risk >= RiskHighThreshold:
		return model.RiskHigh
	case risk >= RiskMediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// BaselineRecommendations are always part of a bias report.
func BaselineRecommendations() []string {
	return []string{
		"Implement regular bias audits",
		"Use diverse evaluation panels",
		"Provide bias awareness training",
		"Consider structured interview processes",
		"Document decision-making rationale",
	}
}

// Recommendations merges statistical, heuristic and baseline advice,
// dropping duplicates and keeping first-seen order.
func Recommendations(s StatisticalAnalysis, h HeuristicAnalysis) []string {
	var recs []string
	if s.Variance != nil && s.Variance.HighVariance {
		recs = append(recs,
			"Review scoring consistency across evaluators",
			"Consider additional training for AI scoring models",
		)
	}
	for _, p := range s.Parity {
		if p.Significant {
			recs = append(recs,
				fmt.Sprintf("Investigate scoring disparities across %s groups", p.Attribute),
				fmt.Sprintf("Consider blind evaluation processes for %s", p.Attribute),
			)
		}
	}
	recs = append(recs, h.Recommendations...)
	recs = append(recs, BaselineRecommendations()...)

	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
