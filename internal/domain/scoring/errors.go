package scoring

import "errors"

// Sentinel errors.
var (
	ErrEmptyCompletion = errors.New("empty completion")
	ErrInvalidResponse = errors.New("completion is not a JSON object")
	ErrNoGenerator     = errors.New("no generator configured")
	ErrGeneratorPanic  = errors.New("generator panicked")
)
