package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// Defaults for missing fields in a completion.
const (
	DefaultScore      = 50.0
	DefaultConfidence = 0.5
	DefaultReasoning  = "No reasoning provided"
)

// Option applies a configuration option to the CategoryScorer.
type Option func(*CategoryScorer)

// WithLogger sets the scorer logger.
func WithLogger(l logger.Logger) Option {
	return func(s *CategoryScorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(s *CategoryScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithConcurrency caps concurrent category calls in ScoreAll.
func WithConcurrency(n int) Option {
	return func(s *CategoryScorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// CategoryScorer delegates judgment to a Generator and owns prompt building,
// parsing, bounding and fallback.
type CategoryScorer struct {
	generator   Generator
	logger      logger.Logger
	timeout     time.Duration
	concurrency int
}

// NewCategoryScorer creates a scorer backed by g.
func NewCategoryScorer(g Generator, opts ...Option) *CategoryScorer {
	s := &CategoryScorer{
		generator:   g,
		logger:      logger.NewNop(),
		concurrency: len(model.Categories()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate scores one category and reports failures explicitly.
func (s *CategoryScorer) Evaluate(ctx context.Context, c model.Category, bundle model.Bundle) Outcome {
	if s.generator == nil {
		return Failed(c, StageGenerate, ErrNoGenerator)
	}
	evidence, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return Failed(c, StagePrompt, err)
	}

	start := time.Now()
	raw, err := CompleteWithin(ctx, s.generator, CategoryPrompt(c, string(evidence)), s.timeout)
	metrics.RecordCategoryLatency(string(c), float64(time.Since(start).Milliseconds()))
	if err != nil {
		return Failed(c, StageGenerate, err)
	}

	r, err := ParseResult(c, raw)
	if err != nil {
		return Failed(c, StageParse, err)
	}
	return Succeeded(r)
}

// ScoreCategory always returns a bounded result; failures become the fallback.
func (s *CategoryScorer) ScoreCategory(ctx context.Context, c model.Category, bundle model.Bundle) Result {
	out := s.Evaluate(ctx, c, bundle)
	if !out.OK() {
		s.logger.Warn(ctx, "category scoring fell back",
			logger.String("category", string(c)),
			logger.String("application_id", bundle.Application.ID),
			logger.String("stage", out.Failure.Stage),
			logger.Error(out.Failure.Err),
		)
		metrics.RecordGenerationFallback("category_scorer")
	}
	return out.Resolve()
}

// ScoreAll scores every category concurrently. Results follow model.Categories order.
func (s *CategoryScorer) ScoreAll(ctx context.Context, bundle model.Bundle) []Result {
	categories := model.Categories()
	results := make([]Result, len(categories))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, c := range categories {
		g.Go(func() error {
			results[i] = s.ScoreCategory(ctx, c, bundle)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return results
}

// ParseResult reads a completion into a bounded Result.
func ParseResult(c model.Category, raw string) (Result, error) {
	data, err := DecodeObject(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Category:   c,
		Score:      stats.Clamp(FloatOr(data, "score", DefaultScore), 0, 100),
		Confidence: stats.Clamp(FloatOr(data, "confidence", DefaultConfidence), 0, 1),
		Reasoning:  StringOr(data, "reasoning", DefaultReasoning),
		Evidence:   CoerceStrings(data["evidence"]),
		Strengths:  CoerceStrings(data["strengths"]),
		Weaknesses: CoerceStrings(data["weaknesses"]),
	}, nil
}

// CompleteWithin calls g with an optional per-call timeout. Empty completions
// and panics inside g are errors.
func CompleteWithin(ctx context.Context, g Generator, p Prompt, timeout time.Duration) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = "", fmt.Errorf("%w: %v", ErrGeneratorPanic, r)
		}
	}()
	if g == nil {
		return "", ErrNoGenerator
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	raw, err = g.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", ErrEmptyCompletion
	}
	return raw, nil
}
