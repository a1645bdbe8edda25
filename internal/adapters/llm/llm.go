// Package llm selects the text-generation backend from configuration.
package llm

import (
	"context"
	"fmt"

	"github.com/okian/talentscore/internal/adapters/llm/gemini"
	"github.com/okian/talentscore/internal/adapters/llm/openai"
	"github.com/okian/talentscore/internal/config"
	"github.com/okian/talentscore/internal/domain/scoring"
)

// New returns the configured Generator. With provider "none" it returns nil,
// and every generated component falls back.
func New(ctx context.Context, cfg *config.Config) (scoring.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderOpenAI:
		c, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, openai.WithBaseURL(cfg.LLMBaseURL))
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		g, err := gemini.NewGenerator(ctx, cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: llm provider %q", config.ErrInvalidConfig, cfg.LLMProvider)
	}
}
