// Package prediction estimates hiring success from the outcomes of
// comparable decided applications.
package prediction

import (
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
)

// Defaults and thresholds.
const (
	SimilarityWindow     = 10.0
	AdjustmentScale      = 0.3
	ConfidenceCap        = 0.9
	ConfidenceSampleSize = 20.0

	NoHistoryProbability = 0.5
	NoHistoryConfidence  = 0.3
	NoHistoryReasoning   = "Insufficient historical data for prediction"

	HireThreshold     = 0.6
	StrongThreshold   = 0.7
	ModerateThreshold = 0.5
	RiskThreshold     = 0.3
	SuccessThreshold  = 0.7

	DefaultHorizonDays = 180
	ModelVersion       = "v1.0"
)

// Assessment is the banded overall prediction.
type Assessment string

// Assessments.
const (
	AssessmentStrong   Assessment = "strong_candidate"
	AssessmentModerate Assessment = "moderate_candidate"
	AssessmentWeak     Assessment = "weak_candidate"
)

// Current is an application's present score in one category.
type Current struct {
	Score      float64
	Confidence float64
}

// CategoryPrediction is the success estimate for one category.
type CategoryPrediction struct {
	Probability  float64 `json:"predicted_success_probability"`
	Confidence   float64 `json:"confidence"`
	SimilarCount int     `json:"similar_candidates_count"`
	Reasoning    string  `json:"reasoning"`
}

// OverallPrediction folds the category estimates together.
type OverallPrediction struct {
	Probability        float64    `json:"predicted_success_probability"`
	Confidence         float64    `json:"confidence"`
	Assessment         Assessment `json:"assessment"`
	RiskFactors        []string   `json:"risk_factors"`
	SuccessIndicators  []string   `json:"success_indicators"`
	HireRecommendation bool       `json:"hire_recommendation"`
}

// Metadata describes the data a prediction was made from.
type Metadata struct {
	HistoricalSampleSize int     `json:"historical_sample_size"`
	HireRate             float64 `json:"hire_rate"`
	ModelVersion         string  `json:"model_version"`
}

// Prediction is the full result for one application.
type Prediction struct {
	HorizonDays int                                   `json:"prediction_horizon_days"`
	Categories  map[model.Category]CategoryPrediction `json:"category_predictions"`
	Overall     OverallPrediction                     `json:"overall_prediction"`
	Metadata    Metadata                              `json:"model_metadata"`
	PredictedAt time.Time                             `json:"predicted_at"`
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithWeights sets the weights used for the overall probability.
func WithWeights(w model.Weights) Option {
	return func(p *Predictor) {
		if len(w) > 0 {
			p.weights = w
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

// Predictor is stateless apart from its configuration.
type Predictor struct {
	weights model.Weights
	now     func() time.Time
}

// NewPredictor creates a predictor using the default weights.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{weights: model.DefaultWeights(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict estimates success per category and overall. A non-positive
// horizon becomes DefaultHorizonDays.
func (p *Predictor) Predict(current map[model.Category]Current, outcomes []model.HistoricalOutcome, horizonDays int) Prediction {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	categories := make(map[model.Category]CategoryPrediction, len(current))
	for _, c := range model.Categories() {
		cur, ok := current[c]
		if !ok {
			continue
		}
		categories[c] = PredictCategory(c, cur, outcomes)
	}

	var hired int
	for _, o := range outcomes {
		if o.Hired {
			hired++
		}
	}
	var rate float64
	if len(outcomes) > 0 {
		rate = stats.Round(float64(hired)/float64(len(outcomes)), 3)
	}

	return Prediction{
		HorizonDays: horizonDays,
		Categories:  categories,
		Overall:     p.overall(categories),
		Metadata: Metadata{
			HistoricalSampleSize: len(outcomes),
			HireRate:             rate,
			ModelVersion:         ModelVersion,
		},
		PredictedAt: p.now().UTC(),
	}
}

// PredictCategory estimates success in one category from outcomes whose score
// lies within SimilarityWindow of the current one, or all outcomes if none do.
func PredictCategory(c model.Category, cur Current, outcomes []model.HistoricalOutcome) CategoryPrediction {
	if len(outcomes) == 0 {
		return CategoryPrediction{
			Probability: NoHistoryProbability,
			Confidence:  NoHistoryConfidence,
			Reasoning:   NoHistoryReasoning,
		}
	}

	var similar []model.HistoricalOutcome
	var history []float64
	for _, o := range outcomes {
		s, ok := o.Scores[c]
		if !ok {
			continue
		}
		history = append(history, s)
		if diff := s - cur.Score; diff >= -SimilarityWindow && diff <= SimilarityWindow {
			similar = append(similar, o)
		}
	}
	if len(similar) == 0 {
		similar = outcomes
	}

	var hired int
	for _, o := range similar {
		if o.Hired {
			hired++
		}
	}
	prob := float64(hired) / float64(len(similar))
	if len(history) > 0 {
		prob = stats.Clamp(prob+(cur.Score-stats.Mean(history))/100*AdjustmentScale, 0, 1)
	}
	conf := min(ConfidenceCap, cur.Confidence*float64(len(similar))/ConfidenceSampleSize)

	return CategoryPrediction{
		Probability:  stats.Round(prob, 3),
		Confidence:   stats.Round(conf, 3),
		SimilarCount: len(similar),
		Reasoning: fmt.Sprintf("Based on %d similar candidates with %s scores near %s",
			len(similar), c, formatScore(cur.Score)),
	}
}

func (p *Predictor) overall(categories map[model.Category]CategoryPrediction) OverallPrediction {
	if len(categories) == 0 {
		return OverallPrediction{
			Probability:       NoHistoryProbability,
			Confidence:        NoHistoryConfidence,
			Assessment:        AssessmentFor(NoHistoryProbability),
			RiskFactors:       []string{"No category predictions available"},
			SuccessIndicators: []string{},
		}
	}

	var weighted, total float64
	confs := make([]float64, 0, len(categories))
	risks := []string{}
	successes := []string{}
	for _, c := range model.Categories() {
		cp, ok := categories[c]
		if !ok {
			continue
		}
		if w := p.weights.Weight(c); w > 0 {
			weighted += cp.Probability * w
			total += w
		}
		confs = append(confs, cp.Confidence)
		switch {
		case cp.Probability < RiskThreshold:
			risks = append(risks, fmt.Sprintf("Low success probability in %s", c))
		case cp.Probability > SuccessThreshold:
			successes = append(successes, fmt.Sprintf("Strong performance predicted in %s", c))
		}
	}

	prob := NoHistoryProbability
	if total > 0 {
		prob = stats.Round(weighted/total, 3)
	}
	return OverallPrediction{
		Probability:        prob,
		Confidence:         stats.Round(stats.Mean(confs), 3),
		Assessment:         AssessmentFor(prob),
		RiskFactors:        risks,
		SuccessIndicators:  successes,
		HireRecommendation: prob >= HireThreshold,
	}
}

// AssessmentFor bands an overall probability.
func AssessmentFor(prob float64) Assessment {
	switch {
	case prob >= StrongThreshold:
		return AssessmentStrong
	case prob >= ModerateThreshold:
		return AssessmentModerate
	default:
		return AssessmentWeak
	}
}

func formatScore(s float64) string {
	return fmt.Sprintf("%g", stats.Round(s, 2))
}
