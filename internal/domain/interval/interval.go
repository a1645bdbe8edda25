// Package interval estimates confidence intervals around category scores
// from the scorer's self-reported confidence and a historical population.
package interval

import (
	"fmt"
	"math"

	"github.com/okian/talentscore/internal/domain/stats"
)

// Defaults.
const (
	DefaultStdDev     = 10.0
	DefaultCV         = 0.5
	DefaultScale      = 0.1
	MinConfidence     = 0.1
	SampleSizeCap     = 100
	DefaultConfidence = 0.95
)

// Reliability is a qualitative trust label.
type Reliability string

// Reliability labels.
const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// HistoricalStats summarizes similar scores of comparable candidates.
type HistoricalStats struct {
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	SampleSize int     `json:"sample_size"`
	CV         float64 `json:"coefficient_of_variation"`
}

// FromScores summarizes a population. CV is zero unless there are at least
// two values with a positive mean.
func FromScores(scores []float64) HistoricalStats {
	h := HistoricalStats{SampleSize: len(scores)}
	if len(scores) == 0 {
		return h
	}
	h.Mean = stats.Mean(scores)
	h.StdDev = stats.StdDev(scores)
	if len(scores) > 1 && h.Mean > 0 {
		h.CV = h.StdDev / h.Mean
	}
	return h
}

// Interval bounds a score. Values are rounded to two decimals.
type Interval struct {
	Lower  float64 `json:"lower_bound"`
	Upper  float64 `json:"upper_bound"`
	Margin float64 `json:"margin_of_error"`
	Width  float64 `json:"width"`
}

// Estimate is an interval with its reliability assessment.
type Estimate struct {
	Score            float64         `json:"score"`
	Confidence       float64         `json:"confidence"`
	Interval         Interval        `json:"interval"`
	Reliability      Reliability     `json:"reliability"`
	ReliabilityScore float64         `json:"reliability_score"`
	History          HistoricalStats `json:"history"`
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithDefaultStdDev sets the spread assumed without a usable population.
func WithDefaultStdDev(sd float64) Option {
	return func(e *Estimator) {
		if sd > 0 {
			e.defaultStd = sd
		}
	}
}

// WithScale sets the margin scale factor.
func WithScale(scale float64) Option {
	return func(e *Estimator) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// Estimator computes score intervals.
type Estimator struct {
	defaultStd float64
	scale      float64
}

// NewEstimator creates an Estimator with defaults.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{defaultStd: DefaultStdDev, scale: DefaultScale}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateLevel checks that a confidence level lies strictly inside (0,1).
func ValidateLevel(level float64) error {
	if math.IsNaN(level) || level <= 0 || level >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidConfidenceLevel, level)
	}
	return nil
}

// Interval returns margin = z * sd * (1/max(conf,0.1)) * scale around score,
// clamped to [0,100]. sd falls back to the default below two samples.
func (e *Estimator) Interval(score, confidence float64, h HistoricalStats, level float64) (Interval, error) {
	if err := ValidateLevel(level); err != nil {
		return Interval{}, err
	}
	sd := h.StdDev
	if h.SampleSize < 2 {
		sd = e.defaultStd
	}
	margin := stats.ZCritical(level) * sd * (1 / math.Max(confidence, MinConfidence)) * e.scale
	lower := math.Max(0, score-margin)
	upper := math.Min(100, score+margin)
	return Interval{
		Lower:  stats.Round(lower, 2),
		Upper:  stats.Round(upper, 2),
		Margin: stats.Round(margin, 2),
		Width:  stats.Round(upper-lower, 2),
	}, nil
}

// Reliability weighs confidence (0.5), sample size against a cap of 100
// (0.3) and 1-CV (0.2). An empty population assumes CV 0.5.
func (e *Estimator) Reliability(confidence float64, h HistoricalStats) (Reliability, float64) {
	cv := h.CV
	if h.SampleSize == 0 {
		cv = DefaultCV
	}
	sampleFactor := math.Min(1, float64(h.SampleSize)/SampleSizeCap)
	varianceFactor := math.Max(0, 1-cv)
	score := stats.Round(confidence*0.5+sampleFactor*0.3+varianceFactor*0.2, 3)

	switch {
	case score >= 0.8:
		return ReliabilityHigh, score
	case score >= 0.6:
		return ReliabilityMedium, score
	default:
		return ReliabilityLow, score
	}
}

// Estimate combines Interval and Reliability.
func (e *Estimator) Estimate(score, confidence float64, h HistoricalStats, level float64) (Estimate, error) {
	iv, err := e.Interval(score, confidence, h, level)
	if err != nil {
		return Estimate{}, err
	}
	rel, relScore := e.Reliability(confidence, h)
	return Estimate{
		Score:            score,
		Confidence:       confidence,
		Interval:         iv,
		Reliability:      rel,
		ReliabilityScore: stats.Round(relScore, 3),
		History:          h,
	}, nil
}
