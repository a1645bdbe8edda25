package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/domain/analytics"
	"github.com/okian/talentscore/internal/domain/model"
)

// Trends buckets the AI scores of ids into periods of periodDays. Empty ids
// cover every application.
func (e *Engine) Trends(ctx context.Context, ids []string, periodDays int) (analytics.Trends, error) {
	records, err := e.listAI(ctx, repository.Filter{ApplicationIDs: uniqueIDs(ids)})
	if err != nil {
		return analytics.Trends{}, err
	}
	return analytics.ComputeTrends(records, periodDays, e.now()), nil
}

// Correlations measures how category scores move together across ids. Empty
// ids cover every application.
func (e *Engine) Correlations(ctx context.Context, ids []string) (analytics.Correlations, error) {
	records, err := e.listAI(ctx, repository.Filter{ApplicationIDs: uniqueIDs(ids)})
	if err != nil {
		return analytics.Correlations{}, err
	}
	return analytics.ComputeCorrelations(records), nil
}

// Summary describes every AI score created in the last periodDays.
func (e *Engine) Summary(ctx context.Context, periodDays int) (analytics.Summary, error) {
	if periodDays <= 0 {
		periodDays = analytics.DefaultPeriodDays
	}
	since := e.now().Add(-time.Duration(periodDays) * 24 * time.Hour)
	records, err := e.listAI(ctx, repository.Filter{Since: since})
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(records, e.weights, periodDays, e.now()), nil
}

func (e *Engine) listAI(ctx context.Context, f repository.Filter) ([]model.ScoreRecord, error) {
	f.Provenance = model.ProvenanceAI
	records, err := e.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return records, nil
}
