package model

// Tier is a percentile band.
type Tier string

// Tiers that percentiles map onto.
const (
	TierExceptional  Tier = "exceptional"
	TierStrong       Tier = "strong"
	TierAverage      Tier = "average"
	TierBelowAverage Tier = "below_average"
	TierWeak         Tier = "weak"
)

// Tiers returns every tier from best to worst.
func Tiers() []Tier {
	return []Tier{TierExceptional, TierStrong, TierAverage, TierBelowAverage, TierWeak}
}

// RankedCandidate is one entry of a comparative ranking.
type RankedCandidate struct {
	ApplicationID string  `json:"application_id"`
	OverallScore  float64 `json:"overall_score"`
	Rank          int     `json:"rank"`
	Percentile    float64 `json:"percentile"`
	Tier          Tier    `json:"tier"`
}

// RiskLevel is a banded bias risk score.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// BiasAssessment is the combined verdict of the bias passes.
type BiasAssessment struct {
	RiskScore      float64   `json:"risk_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	RiskFactors    []string  `json:"risk_factors"`
	RequiresReview bool      `json:"requires_review"`
}
