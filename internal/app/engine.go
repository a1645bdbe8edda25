// Package app assembles the scoring, ranking, interval, bias and prediction
// components into the Engine consumed by callers.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/domain/bias"
	"github.com/okian/talentscore/internal/domain/insights"
	"github.com/okian/talentscore/internal/domain/interval"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/prediction"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/pkg/logger"
)

// ModelVersion tags every result the engine produces.
const ModelVersion = "v1.0"

// Engine is the inbound surface of the scoring engine. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	store    repository.ScoreStore
	evidence repository.EvidenceSource

	scorer    *scoring.CategoryScorer
	heuristic *bias.HeuristicAnalyzer
	writer    *insights.Writer
	estimator *interval.Estimator
	predictor *prediction.Predictor

	weights           model.Weights
	now               func() time.Time
	generationTimeout time.Duration
	concurrency       int
	freshness         time.Duration
	forceAll          bool
	intervalLookback  time.Duration
	outcomeLookback   time.Duration
	companyLimit      int
	minJobSample      int

	logger logger.Logger
}

// New builds an Engine. g may be nil, in which case every generation takes its
// fallback path.
func New(store repository.ScoreStore, evidence repository.EvidenceSource, g scoring.Generator, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	if evidence == nil {
		return nil, ErrMissingSource
	}

	e := &Engine{
		store:            store,
		evidence:         evidence,
		weights:          model.DefaultWeights(),
		now:              time.Now,
		concurrency:      defaultConcurrency,
		freshness:        defaultFreshness,
		intervalLookback: defaultIntervalLookback,
		outcomeLookback:  defaultOutcomeLookback,
		companyLimit:     defaultCompanyLimit,
		minJobSample:     defaultMinJobSample,
		logger:           logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.weights.Validate(); err != nil {
		return nil, err
	}

	e.scorer = scoring.NewCategoryScorer(g,
		scoring.WithLogger(e.logger.Named("scoring")),
		scoring.WithTimeout(e.generationTimeout),
		scoring.WithConcurrency(e.concurrency),
	)
	e.heuristic = bias.NewHeuristicAnalyzer(g,
		bias.WithLogger(e.logger.Named("bias")),
		bias.WithTimeout(e.generationTimeout),
	)
	e.writer = insights.NewWriter(g,
		insights.WithLogger(e.logger.Named("insights")),
		insights.WithTimeout(e.generationTimeout),
	)
	e.estimator = interval.NewEstimator()
	e.predictor = prediction.NewPredictor(
		prediction.WithWeights(e.weights),
		prediction.WithClock(e.now),
	)
	return e, nil
}

// Weights returns a copy of the default aggregation weights.
func (e *Engine) Weights() model.Weights {
	out := make(model.Weights, len(e.weights))
	for c, v := range e.weights {
		out[c] = v
	}
	return out
}

// aiRecords lists AI records, newest per category, grouped by application.
func (e *Engine) aiRecords(ctx context.Context, ids []string) (map[string]map[model.Category]model.ScoreRecord, error) {
	if len(ids) == 0 {
		return map[string]map[model.Category]model.ScoreRecord{}, nil
	}
	records, err := e.store.List(ctx, repository.Filter{ApplicationIDs: ids, Provenance: model.ProvenanceAI})
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	out := make(map[string]map[model.Category]model.ScoreRecord)
	for id, recs := range model.ByApplication(records) {
		out[id] = model.LatestByCategory(recs)
	}
	return out, nil
}

// application looks up id, mapping a missing application to ErrEvidenceNotFound.
func (e *Engine) application(ctx context.Context, id string) (model.Application, error) {
	app, err := e.evidence.Application(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Application{}, fmt.Errorf("%w: application %s", ErrEvidenceNotFound, id)
	}
	if err != nil {
		return model.Application{}, fmt.Errorf("load application %s: %w", id, err)
	}
	return app, nil
}

// values flattens newest-per-category records in canonical category order.
func values(latest map[model.Category]model.ScoreRecord) []model.ScoreRecord {
	out := make([]model.ScoreRecord, 0, len(latest))
	for _, c := range model.Categories() {
		if r, ok := latest[c]; ok {
			out = append(out, r)
		}
	}
	return out
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
