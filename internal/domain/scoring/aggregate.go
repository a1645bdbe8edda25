package scoring

import (
	"maps"
	"slices"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/stats"
)

// Defaults returned when nothing can be aggregated.
const (
	EmptyOverallScore      = 50.0
	EmptyOverallConfidence = 0.5
)

// CategoryInput is one category's contribution to an overall score.
type CategoryInput struct {
	Score      float64
	Confidence float64
	Weight     float64
}

// Aggregate combines present categories into an overall score normalized by
// the weight actually present. Categories are summed in sorted order so the
// result is bit-identical for equal inputs.
func Aggregate(in map[model.Category]CategoryInput) model.OverallScore {
	var weighted, totalWeight, totalConfidence float64
	for _, c := range slices.Sorted(maps.Keys(in)) {
		ci := in[c]
		weighted += ci.Score * ci.Weight
		totalWeight += ci.Weight
		totalConfidence += ci.Confidence
	}
	if len(in) == 0 || totalWeight <= 0 {
		return model.OverallScore{
			Score:      EmptyOverallScore,
			Confidence: EmptyOverallConfidence,
			Grade:      model.GradeFor(EmptyOverallScore),
		}
	}
	// The grade bands the reported score so the two never disagree.
	score := stats.Round(weighted/totalWeight, 2)
	return model.OverallScore{
		Score:      score,
		Confidence: stats.Round(totalConfidence/float64(len(in)), 3),
		Grade:      model.GradeFor(score),
	}
}

// Grade converts a numeric score to its letter band.
func Grade(score float64) model.Grade { return model.GradeFor(score) }

// InputsFromResults pairs results with weights. Categories without a weight are skipped.
func InputsFromResults(results []Result, w model.Weights) map[model.Category]CategoryInput {
	in := make(map[model.Category]CategoryInput, len(results))
	for _, r := range results {
		weight, ok := w[r.Category]
		if !ok {
			continue
		}
		in[r.Category] = CategoryInput{Score: r.Score, Confidence: r.Confidence, Weight: weight}
	}
	return in
}

// InputsFromRecords pairs the newest AI record per category with weights.
// Human records and unweighted categories are skipped.
func InputsFromRecords(records []model.ScoreRecord, w model.Weights) map[model.Category]CategoryInput {
	ai := make([]model.ScoreRecord, 0, len(records))
	for _, r := range records {
		if r.CreatedBy == model.ProvenanceAI {
			ai = append(ai, r)
		}
	}
	in := make(map[model.Category]CategoryInput)
	for c, r := range model.LatestByCategory(ai) {
		weight, ok := w[c]
		if !ok {
			continue
		}
		in[c] = CategoryInput{Score: r.Score, Confidence: r.Confidence, Weight: weight}
	}
	return in
}

// Overall aggregates an application's stored records.
func Overall(records []model.ScoreRecord, w model.Weights) model.OverallScore {
	return Aggregate(InputsFromRecords(records, w))
}
