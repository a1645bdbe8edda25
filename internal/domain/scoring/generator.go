// Package scoring turns assessment evidence into bounded per-category scores
// and aggregates them into an overall score.
package scoring

import (
	"context"
)

// Prompt is one text-generation request.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Generator completes prompts. Implementations are best effort: latency,
// availability and output format are not guaranteed.
type Generator interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

// Complete calls f.
func (f GeneratorFunc) Complete(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }
