// Package ranking orders candidates by overall score and places each on a
// percentile tier relative to the population.
package ranking

import (
	"sort"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
)

// EmptyPercentile is reported against an empty population.
const EmptyPercentile = 50.0

// Candidate is one entry to be ranked.
type Candidate struct {
	ApplicationID string
	OverallScore  float64
	Confidence    float64
}

// Statistics describes the ranked population.
type Statistics struct {
	TotalCandidates  int                `json:"total_candidates"`
	Scores           stats.Summary      `json:"score_statistics"`
	TierDistribution map[model.Tier]int `json:"tier_distribution"`
}

// Ranking is an ordered population with its statistics.
type Ranking struct {
	Candidates []model.RankedCandidate `json:"rankings"`
	Statistics Statistics              `json:"statistics"`
}

// Percentile is the mid-rank percentile of score in population:
// (below + 0.5*equal) / n * 100, rounded to one decimal.
func Percentile(score float64, population []float64) float64 {
	if len(population) == 0 {
		return EmptyPercentile
	}
	var below, equal int
	for _, s := range population {
		switch {
		case s < score:
			below++
		case s == score:
			equal++
		}
	}
	p := (float64(below) + 0.5*float64(equal)) / float64(len(population)) * 100
	return stats.Round(p, 1)
}

// TierFor bands a percentile: >=90 exceptional, >=75 strong, >=50 average,
// >=25 below_average, else weak.
func TierFor(percentile float64) model.Tier {
	switch {
	case percentile >= 90:
		return model.TierExceptional
	case percentile >= 75:
		return model.TierStrong
	case percentile >= 50:
		return model.TierAverage
	case percentile >= 25:
		return model.TierBelowAverage
	default:
		return model.TierWeak
	}
}

// Rank sorts candidates by score descending. Ties keep their input order.
// The input slice is not modified.
func Rank(candidates []Candidate) Ranking {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OverallScore > sorted[j].OverallScore
	})

	population := make([]float64, len(candidates))
	for i, c := range candidates {
		population[i] = c.OverallScore
	}

	out := Ranking{
		Candidates: make([]model.RankedCandidate, len(sorted)),
		Statistics: Statistics{
			TotalCandidates:  len(sorted),
			Scores:           stats.Describe(population),
			TierDistribution: make(map[model.Tier]int),
		},
	}
	for i, c := range sorted {
		p := Percentile(c.OverallScore, population)
		tier := TierFor(p)
		out.Candidates[i] = model.RankedCandidate{
			ApplicationID: c.ApplicationID,
			OverallScore:  c.OverallScore,
			Rank:          i + 1,
			Percentile:    p,
			Tier:          tier,
		}
		out.Statistics.TierDistribution[tier]++
	}
	return out
}

// Top returns at most n leading candidates.
func (r Ranking) Top(n int) []model.RankedCandidate {
	if n < 0 || n >= len(r.Candidates) {
		return r.Candidates
	}
	return r.Candidates[:n]
}
