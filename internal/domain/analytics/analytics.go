// Package analytics computes population views over stored AI scores.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/internal/domain/stats"
)

// Defaults.
const (
	DefaultPeriodDays      = 30
	MinCorrelationSample   = 3
	correlationRoundPlaces = 3
)

// Period is one trend bucket. Index 0 is the most recent period.
type Period struct {
	Index     int       `json:"period"`
	MeanScore float64   `json:"mean_score"`
	Count     int       `json:"score_count"`
	Start     time.Time `json:"period_start"`
	End       time.Time `json:"period_end"`
}

// Trends buckets scores into periods counted back from now.
type Trends struct {
	Periods     []Period `json:"trends"`
	PeriodDays  int      `json:"analysis_period_days"`
	TotalScores int      `json:"total_scores"`
}

// Correlation is a pairwise Pearson test between two categories.
type Correlation struct {
	Pair        string  `json:"pair"`
	R           float64 `json:"correlation"`
	P           float64 `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
	Significant bool    `json:"is_significant"`
}

// Correlations lists every category pair with enough shared samples.
type Correlations struct {
	Pairs      []Correlation `json:"correlations"`
	SampleSize int           `json:"sample_size"`
}

// Summary describes a scoring period.
type Summary struct {
	PeriodDays         int                              `json:"period_days"`
	TotalScores        int                              `json:"total_scores"`
	UniqueApplications int                              `json:"unique_applications"`
	Categories         map[model.Category]stats.Summary `json:"category_statistics"`
	GradeDistribution  map[model.Grade]int              `json:"grade_distribution"`
	AverageConfidence  float64                          `json:"average_confidence"`
}

func aiOnly(records []model.ScoreRecord) []model.ScoreRecord {
	out := make([]model.ScoreRecord, 0, len(records))
	for _, r := range records {
		if r.CreatedBy == model.ProvenanceAI {
			out = append(out, r)
		}
	}
	return out
}

// ComputeTrends groups AI scores by whole periods of periodDays before now.
// A non-positive period becomes DefaultPeriodDays.
func ComputeTrends(records []model.ScoreRecord, periodDays int, now time.Time) Trends {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	records = aiOnly(records)
	buckets := make(map[int][]float64)
	for _, r := range records {
		daysAgo := int(now.Sub(r.CreatedAt).Hours() / 24)
		if daysAgo < 0 {
			daysAgo = 0
		}
		idx := daysAgo / periodDays
		buckets[idx] = append(buckets[idx], r.Score)
	}

	span := time.Duration(periodDays) * 24 * time.Hour
	out := Trends{Periods: make([]Period, 0, len(buckets)), PeriodDays: periodDays, TotalScores: len(records)}
	for idx, xs := range buckets {
		out.Periods = append(out.Periods, Period{
			Index:     idx,
			MeanScore: stats.Round(stats.Mean(xs), 2),
			Count:     len(xs),
			Start:     now.Add(-time.Duration(idx+1) * span),
			End:       now.Add(-time.Duration(idx) * span),
		})
	}
	sort.Slice(out.Periods, func(i, j int) bool { return out.Periods[i].Index < out.Periods[j].Index })
	return out
}

// ComputeCorrelations runs Pearson tests over the latest AI score per
// application and category for every pair of categories.
func ComputeCorrelations(records []model.ScoreRecord) Correlations {
	byApp := model.ByApplication(aiOnly(records))
	ids := make([]string, 0, len(byApp))
	latest := make(map[string]map[model.Category]model.ScoreRecord, len(byApp))
	for id, recs := range byApp {
		ids = append(ids, id)
		latest[id] = model.LatestByCategory(recs)
	}
	sort.Strings(ids)

	out := Correlations{Pairs: []Correlation{}, SampleSize: len(ids)}
	cats := model.Categories()
	for i, a := range cats {
		for _, b := range cats[i+1:] {
			var xs, ys []float64
			for _, id := range ids {
				ra, okA := latest[id][a]
				rb, okB := latest[id][b]
				if okA && okB {
					xs = append(xs, ra.Score)
					ys = append(ys, rb.Score)
				}
			}
			if len(xs) < MinCorrelationSample {
				continue
			}
			res, ok := stats.Pearson(xs, ys)
			if !ok {
				continue
			}
			out.Pairs = append(out.Pairs, Correlation{
				Pair:        fmt.Sprintf("%s_vs_%s", a, b),
				R:           stats.Round(res.R, correlationRoundPlaces),
				P:           stats.Round(res.P, correlationRoundPlaces),
				SampleSize:  res.N,
				Significant: res.Significant,
			})
		}
	}
	return out
}

// Summarize describes AI scores created within periodDays before now. The
// grade distribution uses each application's aggregated overall score.
func Summarize(records []model.ScoreRecord, w model.Weights, periodDays int, now time.Time) Summary {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	cutoff := now.Add(-time.Duration(periodDays) * 24 * time.Hour)
	var recent []model.ScoreRecord
	for _, r := range aiOnly(records) {
		if !r.CreatedAt.Before(cutoff) {
			recent = append(recent, r)
		}
	}

	out := Summary{
		PeriodDays:        periodDays,
		TotalScores:       len(recent),
		Categories:        make(map[model.Category]stats.Summary),
		GradeDistribution: make(map[model.Grade]int),
	}
	if len(recent) == 0 {
		return out
	}

	perCategory := make(map[model.Category][]float64)
	confs := make([]float64, 0, len(recent))
	for _, r := range recent {
		perCategory[r.Category] = append(perCategory[r.Category], r.Score)
		confs = append(confs, r.Confidence)
	}
	for c, xs := range perCategory {
		out.Categories[c] = roundSummary(stats.Describe(xs))
	}

	byApp := model.ByApplication(recent)
	out.UniqueApplications = len(byApp)
	for _, recs := range byApp {
		out.GradeDistribution[scoring.Overall(recs, w).Grade]++
	}
	out.AverageConfidence = stats.Round(stats.Mean(confs), 2)
	return out
}

func roundSummary(s stats.Summary) stats.Summary {
	s.Mean = stats.Round(s.Mean, 2)
	s.Median = stats.Round(s.Median, 2)
	s.Std = stats.Round(s.Std, 2)
	s.Min = stats.Round(s.Min, 2)
	s.Max = stats.Round(s.Max, 2)
	return s
}
