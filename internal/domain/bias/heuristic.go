package bias

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/internal/domain/stats"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// Generation settings for the heuristic pass.
const (
	HeuristicMaxTokens   = 1000
	HeuristicTemperature = 0.2
	heuristicSystem      = "You are an expert in bias detection and fair hiring practices. Analyze objectively."
)

// Neutral values used when the heuristic pass cannot run.
const (
	NeutralFairness       = 0.5
	NeutralIndicator      = "Unable to analyze due to technical error"
	NeutralRecommendation = "Manual bias review recommended"
)

// Confidence levels reported by the heuristic pass.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

//go:embed prompts/heuristic.md
var heuristicTemplate string

// CandidateContext is what the heuristic pass sees for one application.
// Names and contact details are never included.
type CandidateContext struct {
	ApplicationID  string                     `json:"application_id"`
	Scores         map[model.Category]float64 `json:"scores"`
	Overall        float64                    `json:"overall_score"`
	JobTitle       string                     `json:"job_title,omitempty"`
	ProfileSummary string                     `json:"profile_summary,omitempty"`
}

// HeuristicAnalysis is the generated half of a bias audit.
type HeuristicAnalysis struct {
	Indicators         []string `json:"bias_indicators"`
	ConfidenceLevel    string   `json:"confidence_level"`
	AffectedCategories []string `json:"affected_categories"`
	Recommendations    []string `json:"recommendations"`
	FairnessScore      float64  `json:"fairness_score"`
	Fallback           bool     `json:"fallback,omitempty"`
}

// NeutralHeuristic is the analysis used when generation or parsing fails.
func NeutralHeuristic() HeuristicAnalysis {
	return HeuristicAnalysis{
		Indicators:         []string{NeutralIndicator},
		ConfidenceLevel:    ConfidenceLow,
		AffectedCategories: []string{},
		Recommendations:    []string{NeutralRecommendation},
		FairnessScore:      NeutralFairness,
		Fallback:           true,
	}
}

// HeuristicOption configures a HeuristicAnalyzer.
type HeuristicOption func(*HeuristicAnalyzer)

// WithLogger sets the analyzer logger.
func WithLogger(l logger.Logger) HeuristicOption {
	return func(h *HeuristicAnalyzer) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds the generation call.
func WithTimeout(d time.Duration) HeuristicOption {
	return func(h *HeuristicAnalyzer) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// HeuristicAnalyzer asks a Generator to look for bias patterns.
type HeuristicAnalyzer struct {
	generator scoring.Generator
	logger    logger.Logger
	timeout   time.Duration
}

// NewHeuristicAnalyzer creates an analyzer backed by g.
func NewHeuristicAnalyzer(g scoring.Generator, opts ...HeuristicOption) *HeuristicAnalyzer {
	h := &HeuristicAnalyzer{generator: g, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HeuristicPrompt builds the generation request for a population.
func HeuristicPrompt(population []CandidateContext) (scoring.Prompt, error) {
	data, err := json.MarshalIndent(population, "", "  ")
	if err != nil {
		return scoring.Prompt{}, err
	}
	return scoring.Prompt{
		System:      heuristicSystem,
		User:        strings.ReplaceAll(heuristicTemplate, "{{SCORES_JSON}}", string(data)),
		MaxTokens:   HeuristicMaxTokens,
		Temperature: HeuristicTemperature,
	}, nil
}

// Analyze never fails; any generation or parse error yields NeutralHeuristic.
func (h *HeuristicAnalyzer) Analyze(ctx context.Context, population []CandidateContext) HeuristicAnalysis {
	res, stage, err := h.analyze(ctx, population)
	if err != nil {
		h.logger.Warn(ctx, "heuristic bias analysis fell back",
			logger.String("stage", stage),
			logger.Int("population", len(population)),
			logger.Error(err),
		)
		metrics.RecordGenerationFallback("bias_heuristic")
		return NeutralHeuristic()
	}
	return res
}

func (h *HeuristicAnalyzer) analyze(ctx context.Context, population []CandidateContext) (HeuristicAnalysis, string, error) {
	p, err := HeuristicPrompt(population)
	if err != nil {
		return HeuristicAnalysis{}, scoring.StagePrompt, err
	}
	raw, err := scoring.CompleteWithin(ctx, h.generator, p, h.timeout)
	if err != nil {
		return HeuristicAnalysis{}, scoring.StageGenerate, err
	}
	res, err := ParseHeuristic(raw)
	if err != nil {
		return HeuristicAnalysis{}, scoring.StageParse, err
	}
	return res, "", nil
}

// ParseHeuristic reads a completion into a bounded HeuristicAnalysis.
// A missing fairness score is treated as neutral.
func ParseHeuristic(raw string) (HeuristicAnalysis, error) {
	data, err := scoring.DecodeObject(raw)
	if err != nil {
		return HeuristicAnalysis{}, err
	}
	level := strings.ToLower(scoring.StringOr(data, "confidence_level", ConfidenceLow))
	switch level {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		level = ConfidenceLow
	}
	return HeuristicAnalysis{
		Indicators:         scoring.CoerceStrings(data["bias_indicators"]),
		ConfidenceLevel:    level,
		AffectedCategories: scoring.CoerceStrings(data["affected_categories"]),
		Recommendations:    scoring.CoerceStrings(data["recommendations"]),
		FairnessScore:      stats.Clamp(scoring.FloatOr(data, "fairness_score", NeutralFairness), 0, 1),
	}, nil
}
