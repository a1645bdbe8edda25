// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and TALENTSCORE_* env vars over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// LLM providers understood by the process wiring.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the ops HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// DatabaseURL selects the Postgres stores when set; memory stores otherwise.
	DatabaseURL string `koanf:"database_url"`

	// LLMProvider is one of none, openai, gemini.
	LLMProvider string `koanf:"llm_provider"`
	LLMModel    string `koanf:"llm_model"`
	LLMAPIKey   string `koanf:"llm_api_key"`
	// LLMBaseURL overrides the OpenAI-compatible endpoint.
	LLMBaseURL string `koanf:"llm_base_url"`

	// GenerationTimeoutMS bounds every single text generation call.
	GenerationTimeoutMS int `koanf:"generation_timeout_ms"`

	// ScoringConcurrency caps concurrent category calls per request.
	ScoringConcurrency int `koanf:"scoring_concurrency"`

	// CategoryWeights maps category names to aggregation weights.
	CategoryWeights map[string]float64 `koanf:"category_weights"`

	// ScoreFreshnessHours is how long stored AI scores satisfy a non-forced request.
	ScoreFreshnessHours int `koanf:"score_freshness_hours"`
	// ForceRecalculate makes every request bypass stored scores.
	ForceRecalculate bool `koanf:"force_recalculate"`

	IntervalLookbackDays int `koanf:"interval_lookback_days"`
	OutcomeLookbackDays  int `koanf:"outcome_lookback_days"`
	HistoryCompanyLimit  int `koanf:"history_company_limit"`
	// HistoryMinJobSample is the job population size below which history falls back to the company.
	HistoryMinJobSample int `koanf:"history_min_job_sample"`

	// WorkerCount sets the number of rescoring workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`
	// DedupeSize caps the number of tracked pending jobs.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9090",
		LLMProvider:         ProviderNone,
		GenerationTimeoutMS: 30_000,
		ScoringConcurrency:  5,
		CategoryWeights: map[string]float64{
			"technical":     0.30,
			"communication": 0.25,
			"cultural_fit":  0.20,
			"cognitive":     0.15,
			"behavioral":    0.10,
		},
		ScoreFreshnessHours:  24,
		IntervalLookbackDays: 90,
		OutcomeLookbackDays:  365,
		HistoryCompanyLimit:  100,
		HistoryMinJobSample:  1,
		WorkerCount:          runtime.NumCPU(),
		QueueSize:            1_000,
		DedupeSize:           10_000,
	}
}

// GenerationTimeout returns the per-call generation timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutMS) * time.Millisecond
}

// ScoreFreshness returns how long stored scores stay reusable.
func (c *Config) ScoreFreshness() time.Duration {
	return time.Duration(c.ScoreFreshnessHours) * time.Hour
}

// Validate checks value ranges. Weight semantics are validated by the domain model.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LLMProvider) {
	case ProviderNone, "":
	case ProviderOpenAI, ProviderGemini:
		if c.LLMAPIKey == "" {
			return fmt.Errorf("%w: llm_api_key is required for provider %s", ErrInvalidConfig, c.LLMProvider)
		}
	default:
		return fmt.Errorf("%w: unknown llm_provider %q", ErrInvalidConfig, c.LLMProvider)
	}
	positive := map[string]int{
		"generation_timeout_ms":  c.GenerationTimeoutMS,
		"scoring_concurrency":    c.ScoringConcurrency,
		"interval_lookback_days": c.IntervalLookbackDays,
		"outcome_lookback_days":  c.OutcomeLookbackDays,
		"history_company_limit":  c.HistoryCompanyLimit,
		"worker_count":           c.WorkerCount,
		"queue_size":             c.QueueSize,
		"dedupe_size":            c.DedupeSize,
	}
	for key, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, key, v)
		}
	}
	if c.ScoreFreshnessHours < 0 || c.HistoryMinJobSample < 0 {
		return fmt.Errorf("%w: score_freshness_hours and history_min_job_sample must not be negative", ErrInvalidConfig)
	}
	return nil
}
