package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/domain/insights"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// CalculateRequest asks for the scores of one application. A nil Bundle is
// loaded from the evidence source; nil Weights use the engine defaults.
type CalculateRequest struct {
	ApplicationID string
	Bundle        *model.Bundle
	Force         bool
	Weights       model.Weights
}

// ScoreResult is the scoring outcome for one application.
type ScoreResult struct {
	ApplicationID string                `json:"application_id"`
	Overall       model.OverallScore    `json:"overall"`
	Categories    []scoring.Result      `json:"category_scores"`
	Records       []model.ScoreRecord   `json:"-"`
	Explanation   *insights.Explanation `json:"explanation,omitempty"`
	FromCache     bool                  `json:"from_cache"`
	CalculatedAt  time.Time             `json:"calculated_at"`
	ModelVersion  string                `json:"model_version"`
}

// CalculateScores scores every category, replaces the application's AI records
// and aggregates them. Generation failures degrade to fallback scores; only
// invalid input, unknown applications and persistence failures are errors.
func (e *Engine) CalculateScores(ctx context.Context, req CalculateRequest) (ScoreResult, error) {
	if req.ApplicationID == "" {
		return ScoreResult{}, fmt.Errorf("%w: application id is required", ErrInvalidRequest)
	}
	weights := e.weights
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return ScoreResult{}, err
		}
		weights = req.Weights
	}

	if !req.Force && !e.forceAll && e.freshness > 0 {
		cached, ok, err := e.cached(ctx, req.ApplicationID, weights)
		if err != nil {
			return ScoreResult{}, err
		}
		if ok {
			metrics.RecordScoreCacheHit()
			return cached, nil
		}
	}

	bundle, err := e.bundle(ctx, req)
	if err != nil {
		return ScoreResult{}, err
	}

	results := e.scorer.ScoreAll(ctx, bundle)
	records := make([]model.ScoreRecord, len(results))
	for i, r := range results {
		records[i] = model.ScoreRecord{
			ApplicationID: req.ApplicationID,
			Category:      r.Category,
			Score:         r.Score,
			Confidence:    r.Confidence,
			Reasoning:     r.Reasoning,
			Evidence:      r.Evidence,
			CreatedBy:     model.ProvenanceAI,
		}
	}
	stored, err := e.store.ReplaceAI(ctx, req.ApplicationID, records)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("store scores for %s: %w", req.ApplicationID, err)
	}

	overall := scoring.Aggregate(scoring.InputsFromResults(results, weights))
	explanation := e.writer.Explain(ctx, results, overall)
	metrics.RecordScoresCalculated()

	var fallbacks int
	for _, r := range results {
		if r.Fallback {
			fallbacks++
		}
	}
	e.logger.Info(ctx, "scored application",
		logger.String("application_id", req.ApplicationID),
		logger.Float64("overall", overall.Score),
		logger.String("grade", string(overall.Grade)),
		logger.Int("fallbacks", fallbacks),
	)

	return ScoreResult{
		ApplicationID: req.ApplicationID,
		Overall:       overall,
		Categories:    results,
		Records:       stored,
		Explanation:   &explanation,
		CalculatedAt:  e.now().UTC(),
		ModelVersion:  ModelVersion,
	}, nil
}

// ScoreApplication scores id from the evidence source. It lets the engine
// serve as a background worker's scorer.
func (e *Engine) ScoreApplication(ctx context.Context, id string, force bool) error {
	_, err := e.CalculateScores(ctx, CalculateRequest{ApplicationID: id, Force: force})
	return err
}

// GetScores returns the current AI scores of id with their aggregate.
func (e *Engine) GetScores(ctx context.Context, id string) (ScoreResult, error) {
	latest, err := e.aiRecords(ctx, []string{id})
	if err != nil {
		return ScoreResult{}, err
	}
	recs, ok := latest[id]
	if !ok || len(recs) == 0 {
		return ScoreResult{}, fmt.Errorf("%w: application %s", ErrNoScores, id)
	}
	return e.fromRecords(id, values(recs), e.weights), nil
}

// DeleteScores removes every score of id and reports how many were removed.
func (e *Engine) DeleteScores(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: application id is required", ErrInvalidRequest)
	}
	n, err := e.store.DeleteByApplication(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete scores for %s: %w", id, err)
	}
	e.logger.Info(ctx, "deleted scores", logger.String("application_id", id), logger.Int("count", n))
	return n, nil
}

// cached returns stored scores when every category has an AI record and the
// newest is younger than the freshness window.
func (e *Engine) cached(ctx context.Context, id string, w model.Weights) (ScoreResult, bool, error) {
	latest, err := e.aiRecords(ctx, []string{id})
	if err != nil {
		return ScoreResult{}, false, err
	}
	recs := latest[id]
	if len(recs) < len(model.Categories()) {
		return ScoreResult{}, false, nil
	}
	var newest time.Time
	for _, r := range recs {
		if r.CreatedAt.After(newest) {
			newest = r.CreatedAt
		}
	}
	if e.now().Sub(newest) >= e.freshness {
		return ScoreResult{}, false, nil
	}
	res := e.fromRecords(id, values(recs), w)
	res.FromCache = true
	return res, true, nil
}

func (e *Engine) fromRecords(id string, records []model.ScoreRecord, w model.Weights) ScoreResult {
	results := make([]scoring.Result, len(records))
	var newest time.Time
	for i, r := range records {
		results[i] = scoring.Result{
			Category:   r.Category,
			Score:      r.Score,
			Confidence: r.Confidence,
			Reasoning:  r.Reasoning,
			Evidence:   r.Evidence,
		}
		if r.CreatedAt.After(newest) {
			newest = r.CreatedAt
		}
	}
	return ScoreResult{
		ApplicationID: id,
		Overall:       scoring.Overall(records, w),
		Categories:    results,
		Records:       records,
		CalculatedAt:  newest.UTC(),
		ModelVersion:  ModelVersion,
	}
}

// bundle returns the request's evidence or loads it.
func (e *Engine) bundle(ctx context.Context, req CalculateRequest) (model.Bundle, error) {
	if req.Bundle != nil {
		b := *req.Bundle
		switch b.Application.ID {
		case "":
			b.Application.ID = req.ApplicationID
		case req.ApplicationID:
		default:
			return model.Bundle{}, fmt.Errorf("%w: bundle belongs to application %s", ErrInvalidRequest, b.Application.ID)
		}
		return b, nil
	}

	if _, err := e.application(ctx, req.ApplicationID); err != nil {
		return model.Bundle{}, err
	}
	b, err := e.evidence.Bundle(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Bundle{}, fmt.Errorf("%w: evidence for %s", ErrEvidenceNotFound, req.ApplicationID)
		}
		return model.Bundle{}, fmt.Errorf("load evidence for %s: %w", req.ApplicationID, err)
	}
	if b.Application.ID == "" {
		b.Application.ID = req.ApplicationID
	}
	return b, nil
}
