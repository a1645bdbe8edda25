package app

import (
	"time"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/pkg/logger"
)

// Default engine configuration.
const (
	defaultFreshness        = 24 * time.Hour
	defaultIntervalLookback = 90 * 24 * time.Hour
	defaultOutcomeLookback  = 365 * 24 * time.Hour
	defaultCompanyLimit     = 100
	defaultMinJobSample     = 1
	defaultConcurrency      = 5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to the engine and its components.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWeights sets the default aggregation weights. They are validated by New.
func WithWeights(w model.Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.weights = w
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithGenerationTimeout bounds every text generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.generationTimeout = d
		}
	}
}

// WithScoringConcurrency caps concurrent category calls per request.
func WithScoringConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithScoreFreshness sets how long stored AI scores satisfy a non-forced
// request. Zero disables reuse.
func WithScoreFreshness(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.freshness = d
		}
	}
}

// WithForceRecalculate makes every request bypass stored scores.
func WithForceRecalculate(force bool) Option {
	return func(e *Engine) {
		e.forceAll = force
	}
}

// WithIntervalLookback sets how far back interval populations reach.
func WithIntervalLookback(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.intervalLookback = d
		}
	}
}

// WithOutcomeLookback sets how far back decided applications are read.
func WithOutcomeLookback(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.outcomeLookback = d
		}
	}
}

// WithHistoryCompanyLimit caps the company-wide fallback population.
func WithHistoryCompanyLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.companyLimit = n
		}
	}
}

// WithHistoryMinJobSample sets the job population size below which history
// falls back to the whole company.
func WithHistoryMinJobSample(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.minJobSample = n
		}
	}
}
