package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/domain/bias"
	"github.com/okian/talentscore/internal/domain/insights"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/ranking"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// BiasReport joins both bias passes with their combined assessment.
type BiasReport struct {
	Statistical     bias.StatisticalAnalysis `json:"statistical_analysis"`
	Heuristic       bias.HeuristicAnalysis   `json:"ai_analysis"`
	Assessment      model.BiasAssessment     `json:"overall_bias_risk"`
	Recommendations []string                 `json:"recommendations"`
	SampleSize      int                      `json:"sample_size"`
	ScoredSize      int                      `json:"scored_applications"`
	AnalyzedAt      time.Time                `json:"analyzed_at"`
}

// RankingReport is a ranking with its narrative insights.
type RankingReport struct {
	ranking.Ranking
	Insights    insights.RankingInsights `json:"insights"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// DetectBias audits the AI scores of ids. demographics may be nil, in which
// case parity analysis is skipped.
func (e *Engine) DetectBias(ctx context.Context, ids []string, demographics bias.Demographics) (BiasReport, error) {
	ids = uniqueIDs(ids)
	latest, err := e.aiRecords(ctx, ids)
	if err != nil {
		return BiasReport{}, err
	}

	apps := make([]bias.ApplicationScores, 0, len(latest))
	population := make([]bias.CandidateContext, 0, len(latest))
	for _, id := range ids {
		recs, ok := latest[id]
		if !ok {
			continue
		}
		scores := make(map[model.Category]float64, len(recs))
		for c, r := range recs {
			scores[c] = r.Score
		}
		overall := scoring.Overall(values(recs), e.weights).Score
		apps = append(apps, bias.ApplicationScores{ApplicationID: id, Scores: scores, Overall: overall})
		population = append(population, e.candidateContext(ctx, id, scores, overall))
	}
	if len(apps) == 0 {
		return BiasReport{}, fmt.Errorf("%w: bias analysis over %d applications", ErrNoScores, len(ids))
	}

	statistical := bias.AnalyzeStatistics(apps, demographics)
	heuristic := e.heuristic.Analyze(ctx, population)
	assessment := bias.Combine(statistical, heuristic)
	metrics.RecordBiasAssessment(string(assessment.RiskLevel))

	e.logger.Info(ctx, "bias analysis complete",
		logger.Int("applications", len(apps)),
		logger.Float64("risk_score", assessment.RiskScore),
		logger.String("risk_level", string(assessment.RiskLevel)),
	)

	return BiasReport{
		Statistical:     statistical,
		Heuristic:       heuristic,
		Assessment:      assessment,
		Recommendations: bias.Recommendations(statistical, heuristic),
		SampleSize:      len(ids),
		ScoredSize:      len(apps),
		AnalyzedAt:      e.now().UTC(),
	}, nil
}

// candidateContext enriches scores with job and profile text when the
// evidence is available. Missing evidence only narrows the context.
func (e *Engine) candidateContext(ctx context.Context, id string, scores map[model.Category]float64, overall float64) bias.CandidateContext {
	c := bias.CandidateContext{ApplicationID: id, Scores: scores, Overall: overall}
	b, err := e.evidence.Bundle(ctx, id)
	if err != nil {
		e.logger.Debug(ctx, "bias context without evidence", logger.String("application_id", id), logger.Error(err))
		return c
	}
	c.JobTitle = b.Job.Title
	c.ProfileSummary = b.Candidate.Summary
	return c
}

// Rank orders ids by aggregated AI score. Applications without scores are
// left out.
func (e *Engine) Rank(ctx context.Context, ids []string) (RankingReport, error) {
	ids = uniqueIDs(ids)
	latest, err := e.aiRecords(ctx, ids)
	if err != nil {
		return RankingReport{}, err
	}

	candidates := make([]ranking.Candidate, 0, len(latest))
	for _, id := range ids {
		recs, ok := latest[id]
		if !ok {
			continue
		}
		overall := scoring.Overall(values(recs), e.weights)
		candidates = append(candidates, ranking.Candidate{
			ApplicationID: id,
			OverallScore:  overall.Score,
			Confidence:    overall.Confidence,
		})
	}
	if len(candidates) == 0 {
		return RankingReport{}, fmt.Errorf("%w: ranking over %d applications", ErrNoScores, len(ids))
	}

	r := ranking.Rank(candidates)
	metrics.RecordRankingSize(len(candidates))
	return RankingReport{
		Ranking:     r,
		Insights:    e.writer.Rank(ctx, r),
		GeneratedAt: e.now().UTC(),
	}, nil
}
