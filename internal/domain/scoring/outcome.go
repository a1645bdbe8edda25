package scoring

import (
	"fmt"

	"github.com/okian/talentscore/internal/domain/model"
)

// Fallback values. They stay recognizable downstream so low-trust results can be flagged.
const (
	FallbackScore      = 50.0
	FallbackConfidence = 0.3
	FallbackWeakness   = "technical evaluation error"
)

// Failure stages.
const (
	StagePrompt   = "prompt"
	StageGenerate = "generate"
	StageParse    = "parse"
)

// Result is the evaluation of one category.
type Result struct {
	Category   model.Category `json:"category"`
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Evidence   []string       `json:"evidence"`
	Strengths  []string       `json:"strengths"`
	Weaknesses []string       `json:"weaknesses"`
	// Fallback marks a result substituted for a failed generation.
	Fallback     bool   `json:"fallback"`
	FailureStage string `json:"failure_stage,omitempty"`
}

// GenerationFailure explains why a category could not be scored from a completion.
type GenerationFailure struct {
	Category model.Category
	Stage    string
	Err      error
}

func (f *GenerationFailure) Error() string {
	return fmt.Sprintf("score %s: %s: %v", f.Category, f.Stage, f.Err)
}

func (f *GenerationFailure) Unwrap() error { return f.Err }

// Outcome holds either a parsed Result or the failure that prevented one.
type Outcome struct {
	Result  Result
	Failure *GenerationFailure
}

// Succeeded builds a successful outcome.
func Succeeded(r Result) Outcome { return Outcome{Result: r} }

// Failed builds a failed outcome.
func Failed(category model.Category, stage string, err error) Outcome {
	return Outcome{Failure: &GenerationFailure{Category: category, Stage: stage, Err: err}}
}

// OK reports whether the outcome carries a parsed result.
func (o Outcome) OK() bool { return o.Failure == nil }

// Resolve returns the parsed result, or the fallback for the failure.
func (o Outcome) Resolve() Result {
	if o.Failure != nil {
		return Fallback(o.Failure.Category, o.Failure)
	}
	return o.Result
}

// Fallback maps a failure to the neutral result for category. The mapping
// depends only on its arguments.
func Fallback(category model.Category, failure *GenerationFailure) Result {
	r := Result{
		Category:   category,
		Score:      FallbackScore,
		Confidence: FallbackConfidence,
		Reasoning:  fmt.Sprintf("%s unavailable", category),
		Evidence:   []string{},
		Strengths:  []string{},
		Weaknesses: []string{FallbackWeakness},
		Fallback:   true,
	}
	if failure != nil {
		r.FailureStage = failure.Stage
	}
	return r
}
