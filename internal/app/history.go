package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/domain/interval"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/prediction"
	"github.com/okian/talentscore/internal/domain/scoring"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// IntervalReport holds one estimate per scored category plus the overall score.
type IntervalReport struct {
	ApplicationID        string                               `json:"application_id"`
	ConfidenceLevel      float64                              `json:"confidence_level"`
	Intervals            map[model.Category]interval.Estimate `json:"intervals"`
	HistoricalSampleSize int                                  `json:"historical_sample_size"`
	CalculatedAt         time.Time                            `json:"calculated_at"`
}

// PredictionReport ties a prediction to its application.
type PredictionReport struct {
	ApplicationID string `json:"application_id"`
	prediction.Prediction
}

// ConfidenceIntervals estimates an interval around each current AI score of
// id. level must lie strictly between 0 and 1.
func (e *Engine) ConfidenceIntervals(ctx context.Context, id string, level float64) (IntervalReport, error) {
	if err := interval.ValidateLevel(level); err != nil {
		return IntervalReport{}, err
	}
	latest, err := e.aiRecords(ctx, []string{id})
	if err != nil {
		return IntervalReport{}, err
	}
	recs, ok := latest[id]
	if !ok || len(recs) == 0 {
		return IntervalReport{}, fmt.Errorf("%w: application %s", ErrNoScores, id)
	}

	history, sample := e.intervalHistory(ctx, id)

	out := make(map[model.Category]interval.Estimate, len(recs)+1)
	for c, r := range recs {
		est, err := e.estimator.Estimate(r.Score, r.Confidence, history[c], level)
		if err != nil {
			return IntervalReport{}, err
		}
		out[c] = est
	}
	overall := scoring.Overall(values(recs), e.weights)
	est, err := e.estimator.Estimate(overall.Score, overall.Confidence, history[model.CategoryOverall], level)
	if err != nil {
		return IntervalReport{}, err
	}
	out[model.CategoryOverall] = est

	return IntervalReport{
		ApplicationID:        id,
		ConfidenceLevel:      level,
		Intervals:            out,
		HistoricalSampleSize: sample,
		CalculatedAt:         e.now().UTC(),
	}, nil
}

// PredictPerformance estimates the chance of success for id from decided
// applications of the same job, or of the same company when the job has none.
func (e *Engine) PredictPerformance(ctx context.Context, id string, horizonDays int) (PredictionReport, error) {
	latest, err := e.aiRecords(ctx, []string{id})
	if err != nil {
		return PredictionReport{}, err
	}
	recs, ok := latest[id]
	if !ok || len(recs) == 0 {
		return PredictionReport{}, fmt.Errorf("%w: application %s", ErrNoScores, id)
	}

	current := make(map[model.Category]prediction.Current, len(recs))
	for c, r := range recs {
		current[c] = prediction.Current{Score: r.Score, Confidence: r.Confidence}
	}

	p := e.predictor.Predict(current, e.outcomes(ctx, id), horizonDays)
	metrics.RecordPrediction(string(p.Overall.Assessment))
	return PredictionReport{ApplicationID: id, Prediction: p}, nil
}

// population finds comparable applications: the same job first, the same
// company when the job population is smaller than minJobSample. Failures are
// logged and yield an empty population.
func (e *Engine) population(ctx context.Context, id string, statuses []string, lookback time.Duration) []model.Application {
	app, err := e.evidence.Application(ctx, id)
	if err != nil {
		e.logger.Warn(ctx, "history unavailable", logger.String("application_id", id), logger.Error(err))
		return nil
	}

	q := repository.HistoryQuery{
		ExcludeApplicationID: id,
		JobID:                app.JobID,
		Statuses:             statuses,
		Since:                e.now().Add(-lookback),
	}
	similar, err := e.evidence.SimilarApplications(ctx, q)
	if err != nil {
		e.logger.Warn(ctx, "job history unavailable", logger.String("application_id", id), logger.Error(err))
		similar = nil
	}
	if len(similar) >= e.minJobSample && len(similar) > 0 {
		return similar
	}
	if app.CompanyID == "" {
		return similar
	}

	q.JobID = ""
	q.CompanyID = app.CompanyID
	q.Limit = e.companyLimit
	company, err := e.evidence.SimilarApplications(ctx, q)
	if err != nil {
		e.logger.Warn(ctx, "company history unavailable", logger.String("application_id", id), logger.Error(err))
		return similar
	}
	return company
}

// intervalHistory summarizes the AI scores of comparable recent applications,
// including their aggregated overall score.
func (e *Engine) intervalHistory(ctx context.Context, id string) (map[model.Category]interval.HistoricalStats, int) {
	apps := e.population(ctx, id, nil, e.intervalLookback)
	out := make(map[model.Category]interval.HistoricalStats)
	if len(apps) == 0 {
		return out, 0
	}

	latest, err := e.aiRecords(ctx, applicationIDs(apps))
	if err != nil {
		e.logger.Warn(ctx, "history scores unavailable", logger.String("application_id", id), logger.Error(err))
		return out, len(apps)
	}

	perCategory := make(map[model.Category][]float64)
	for _, a := range apps {
		recs, ok := latest[a.ID]
		if !ok {
			continue
		}
		for c, r := range recs {
			perCategory[c] = append(perCategory[c], r.Score)
		}
		perCategory[model.CategoryOverall] = append(perCategory[model.CategoryOverall],
			scoring.Overall(values(recs), e.weights).Score)
	}
	for c, xs := range perCategory {
		out[c] = interval.FromScores(xs)
	}
	return out, len(apps)
}

// outcomes reads decided applications that have AI scores.
func (e *Engine) outcomes(ctx context.Context, id string) []model.HistoricalOutcome {
	apps := e.population(ctx, id, []string{model.StatusHired, model.StatusRejected}, e.outcomeLookback)
	if len(apps) == 0 {
		return nil
	}
	latest, err := e.aiRecords(ctx, applicationIDs(apps))
	if err != nil {
		e.logger.Warn(ctx, "outcome scores unavailable", logger.String("application_id", id), logger.Error(err))
		return nil
	}

	out := make([]model.HistoricalOutcome, 0, len(apps))
	for _, a := range apps {
		recs, ok := latest[a.ID]
		if !ok {
			continue
		}
		scores := make(map[model.Category]float64, len(recs))
		for c, r := range recs {
			scores[c] = r.Score
		}
		o := model.HistoricalOutcome{
			ApplicationID: a.ID,
			Hired:         a.Status == model.StatusHired,
			Scores:        scores,
		}
		if !a.UpdatedAt.IsZero() && a.UpdatedAt.After(a.CreatedAt) {
			o.DaysToDecision = float64(int(a.UpdatedAt.Sub(a.CreatedAt).Hours() / 24))
		}
		out = append(out, o)
	}
	return out
}

func applicationIDs(apps []model.Application) []string {
	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}
	return ids
}
