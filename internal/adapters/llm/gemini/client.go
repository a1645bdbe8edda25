// Package gemini implements scoring.Generator on the Google GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/okian/talentscore/internal/domain/scoring"
)

const defaultModel = "gemini-2.5-flash"

// contentGenerator is the part of genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends prompts to Gemini, asking for JSON output.
type Generator struct {
	models    contentGenerator
	modelName string
}

// NewGenerator creates a Generator on the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, model), nil
}

func newGenerator(models contentGenerator, model string) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{models: models, modelName: model}
}

// Config maps a prompt onto Gemini generation settings.
func Config(p scoring.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(p.Temperature)),
		ResponseMIMEType: "application/json",
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}
	if s := strings.TrimSpace(p.System); s != "" {
		cfg.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}
	return cfg
}

// Complete returns the text of the first candidate that has any.
func (g *Generator) Complete(ctx context.Context, p scoring.Prompt) (string, error) {
	if g == nil || g.models == nil {
		return "", ErrNotInitialized
	}
	user := strings.TrimSpace(p.User)
	if user == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(user), Config(p))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", scoring.ErrEmptyCompletion
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
		if out := strings.TrimSpace(b.String()); out != "" {
			return out, nil
		}
	}
	return "", scoring.ErrEmptyCompletion
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
