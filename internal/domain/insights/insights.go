// Package insights produces generated narrative around scores and rankings.
// Every generation has a fixed fallback so callers never see a failure.
package insights

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/ranking"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// Generation settings.
const (
	ExplanationMaxTokens   = 1200
	ExplanationTemperature = 0.4
	RankingMaxTokens       = 1000
	RankingTemperature     = 0.4
	RankingTopN            = 10

	explanationSystem = "You are an expert recruiter providing explainable AI insights for hiring decisions."
	rankingSystem     = "You are an expert talent acquisition analyst providing strategic hiring insights."
)

// Recommendation is the hiring call of an explanation.
type Recommendation string

// Recommendations.
const (
	RecommendStrongHire Recommendation = "strong_hire"
	RecommendHire       Recommendation = "hire"
	RecommendMaybe      Recommendation = "maybe"
	RecommendNoHire     Recommendation = "no_hire"
)

var (
	//go:embed prompts/explanation.md
	explanationTemplate string
	//go:embed prompts/ranking.md
	rankingTemplate string
)

// Explanation summarizes an application's scores for a reviewer.
type Explanation struct {
	ExecutiveSummary    string         `json:"executive_summary"`
	KeyStrengths        []string       `json:"key_strengths"`
	AreasForImprovement []string       `json:"areas_for_improvement"`
	Recommendation      Recommendation `json:"recommendation"`
	ConfidenceLevel     string         `json:"confidence_level"`
	NextSteps           []string       `json:"next_steps"`
	ScoreBreakdown      string         `json:"score_breakdown"`
	BiasConsiderations  []string       `json:"bias_considerations"`
	Fallback            bool           `json:"fallback,omitempty"`
}

// FallbackExplanation is returned when the explanation cannot be generated.
func FallbackExplanation() Explanation {
	return Explanation{
		ExecutiveSummary:    "Candidate evaluation completed with mixed results.",
		KeyStrengths:        []string{"Manual review recommended"},
		AreasForImprovement: []string{"Technical evaluation error"},
		Recommendation:      RecommendMaybe,
		ConfidenceLevel:     "low",
		NextSteps:           []string{"Schedule manual review"},
		ScoreBreakdown:      "Automated scoring encountered technical issues",
		BiasConsiderations:  []string{"Technical evaluation limitations"},
		Fallback:            true,
	}
}

// RankingInsights is the generated analysis of a ranking.
type RankingInsights struct {
	TopCandidatesSummary      string   `json:"top_candidates_summary"`
	ScoreDistributionAnalysis string   `json:"score_distribution_analysis"`
	HiringRecommendations     []string `json:"hiring_recommendations"`
	TalentPoolQuality         string   `json:"talent_pool_quality"`
	CompetitiveAnalysis       string   `json:"competitive_analysis"`
	NextSteps                 []string `json:"next_steps"`
	Fallback                  bool     `json:"fallback,omitempty"`
}

// FallbackRankingInsights is returned when ranking insights cannot be generated.
func FallbackRankingInsights() RankingInsights {
	return RankingInsights{
		TopCandidatesSummary:      "Manual review recommended for top candidates",
		ScoreDistributionAnalysis: "Unable to analyze due to technical error",
		HiringRecommendations:     []string{"Review top candidates manually"},
		TalentPoolQuality:         "Requires manual assessment",
		CompetitiveAnalysis:       "Technical analysis unavailable",
		NextSteps:                 []string{"Schedule manual review of rankings"},
		Fallback:                  true,
	}
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the writer logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// Writer generates explanations and ranking insights.
type Writer struct {
	generator scoring.Generator
	logger    logger.Logger
	timeout   time.Duration
}

// NewWriter creates a writer backed by g.
func NewWriter(g scoring.Generator, opts ...Option) *Writer {
	w := &Writer{generator: g, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ExplanationPrompt builds the explanation request.
func ExplanationPrompt(results []scoring.Result, overall model.OverallScore) (scoring.Prompt, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return scoring.Prompt{}, err
	}
	user := strings.NewReplacer(
		"{{OVERALL_SCORE}}", strconv.FormatFloat(overall.Score, 'f', -1, 64),
		"{{GRADE}}", string(overall.Grade),
		"{{CATEGORIES_JSON}}", string(data),
	).Replace(explanationTemplate)
	return scoring.Prompt{
		System:      explanationSystem,
		User:        user,
		MaxTokens:   ExplanationMaxTokens,
		Temperature: ExplanationTemperature,
	}, nil
}

// Explain never fails; errors produce FallbackExplanation.
func (w *Writer) Explain(ctx context.Context, results []scoring.Result, overall model.OverallScore) Explanation {
	p, err := ExplanationPrompt(results, overall)
	if err != nil {
		return fallbackOf(ctx, w, "explanation", scoring.StagePrompt, err, FallbackExplanation())
	}
	raw, err := scoring.CompleteWithin(ctx, w.generator, p, w.timeout)
	if err != nil {
		return fallbackOf(ctx, w, "explanation", scoring.StageGenerate, err, FallbackExplanation())
	}
	e, err := ParseExplanation(raw)
	if err != nil {
		return fallbackOf(ctx, w, "explanation", scoring.StageParse, err, FallbackExplanation())
	}
	return e
}

// ParseExplanation reads a completion into an Explanation. next_steps may be
// a string or a list.
func ParseExplanation(raw string) (Explanation, error) {
	data, err := scoring.DecodeObject(raw)
	if err != nil {
		return Explanation{}, err
	}
	rec := Recommendation(strings.ToLower(scoring.StringOr(data, "recommendation", string(RecommendMaybe))))
	switch rec {
	case RecommendStrongHire, RecommendHire, RecommendMaybe, RecommendNoHire:
	default:
		rec = RecommendMaybe
	}
	return Explanation{
		ExecutiveSummary:    scoring.CoerceString(data["executive_summary"]),
		KeyStrengths:        scoring.CoerceStrings(data["key_strengths"]),
		AreasForImprovement: scoring.CoerceStrings(data["areas_for_improvement"]),
		Recommendation:      rec,
		ConfidenceLevel:     strings.ToLower(scoring.StringOr(data, "confidence_level", "low")),
		NextSteps:           scoring.CoerceStrings(data["next_steps"]),
		ScoreBreakdown:      scoring.CoerceString(data["score_breakdown"]),
		BiasConsiderations:  scoring.CoerceStrings(data["bias_considerations"]),
	}, nil
}

// RankingPrompt builds the ranking insights request from the top of r.
func RankingPrompt(r ranking.Ranking) (scoring.Prompt, error) {
	top, err := json.MarshalIndent(r.Top(RankingTopN), "", "  ")
	if err != nil {
		return scoring.Prompt{}, err
	}
	st, err := json.MarshalIndent(r.Statistics, "", "  ")
	if err != nil {
		return scoring.Prompt{}, err
	}
	user := strings.NewReplacer(
		"{{TOP_N}}", strconv.Itoa(RankingTopN),
		"{{RANKING_JSON}}", string(top),
		"{{STATISTICS_JSON}}", string(st),
	).Replace(rankingTemplate)
	return scoring.Prompt{
		System:      rankingSystem,
		User:        user,
		MaxTokens:   RankingMaxTokens,
		Temperature: RankingTemperature,
	}, nil
}

// Rank never fails; errors produce FallbackRankingInsights.
func (w *Writer) Rank(ctx context.Context, r ranking.Ranking) RankingInsights {
	p, err := RankingPrompt(r)
	if err != nil {
		return fallbackOf(ctx, w, "ranking_insights", scoring.StagePrompt, err, FallbackRankingInsights())
	}
	raw, err := scoring.CompleteWithin(ctx, w.generator, p, w.timeout)
	if err != nil {
		return fallbackOf(ctx, w, "ranking_insights", scoring.StageGenerate, err, FallbackRankingInsights())
	}
	ins, err := ParseRankingInsights(raw)
	if err != nil {
		return fallbackOf(ctx, w, "ranking_insights", scoring.StageParse, err, FallbackRankingInsights())
	}
	return ins
}

// ParseRankingInsights reads a completion into RankingInsights.
func ParseRankingInsights(raw string) (RankingInsights, error) {
	data, err := scoring.DecodeObject(raw)
	if err != nil {
		return RankingInsights{}, err
	}
	return RankingInsights{
		TopCandidatesSummary:      scoring.CoerceString(data["top_candidates_summary"]),
		ScoreDistributionAnalysis: scoring.CoerceString(data["score_distribution_analysis"]),
		HiringRecommendations:     scoring.CoerceStrings(data["hiring_recommendations"]),
		TalentPoolQuality:         scoring.CoerceString(data["talent_pool_quality"]),
		CompetitiveAnalysis:       scoring.CoerceString(data["competitive_analysis"]),
		NextSteps:                 scoring.CoerceStrings(data["next_steps"]),
	}, nil
}

func fallbackOf[T any](ctx context.Context, w *Writer, component, stage string, err error, fb T) T {
	w.logger.Warn(ctx, fmt.Sprintf("%s fell back", component),
		logger.String("stage", stage),
		logger.Error(err),
	)
	metrics.RecordGenerationFallback(component)
	return fb
}
