package gemini

import "errors"

// Sentinel kinds for Gemini generator errors.
var (
	ErrMissingAPIKey  = errors.New("gemini api key is required")
	ErrNotInitialized = errors.New("gemini generator is not initialized")
	ErrEmptyPrompt    = errors.New("prompt must not be empty")
)
