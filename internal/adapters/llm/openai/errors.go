package openai

import "errors"

// Sentinel kinds for OpenAI client errors.
var (
	ErrMissingAPIKey = errors.New("openai api key is required")
	ErrUpstream      = errors.New("openai error")
	ErrNoChoices     = errors.New("openai response missing choices")
)
