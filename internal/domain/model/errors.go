package model

import "errors"

// Sentinel errors for model validation.
var (
	ErrInvalidWeights  = errors.New("invalid category weights")
	ErrUnknownCategory = errors.New("unknown category")
)
