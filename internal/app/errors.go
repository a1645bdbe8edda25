package app

import (
	"errors"
	"fmt"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/domain/interval"
	"github.com/okian/talentscore/internal/domain/model"
)

// Sentinel errors surfaced by the Engine.
var (
	// ErrEvidenceNotFound reports an unknown application. It matches repository.ErrNotFound.
	ErrEvidenceNotFound = fmt.Errorf("evidence not found: %w", repository.ErrNotFound)

	// ErrNoScores reports that none of the requested applications has AI scores.
	ErrNoScores = errors.New("no scores found")

	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingStore   = errors.New("score store is required")
	ErrMissingSource  = errors.New("evidence source is required")

	ErrInvalidWeights         = model.ErrInvalidWeights
	ErrInvalidConfidenceLevel = interval.ErrInvalidConfidenceLevel
)
