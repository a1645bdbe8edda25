package repository

import (
	"fmt"
	"math"

	"github.com/okian/talentscore/internal/domain/model"
)

// validate checks the bounds every stored record must respect.
func validate(r model.ScoreRecord) error {
	switch {
	case r.ApplicationID == "":
		return fmt.Errorf("%w: empty application id", ErrInvalidRecord)
	case !r.Category.Valid() && r.Category != model.CategoryOverall:
		return fmt.Errorf("%w: category %q", ErrInvalidRecord, r.Category)
	case math.IsNaN(r.Score) || r.Score < 0 || r.Score > 100:
		return fmt.Errorf("%w: score %v", ErrInvalidRecord, r.Score)
	case math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1:
		return fmt.Errorf("%w: confidence %v", ErrInvalidRecord, r.Confidence)
	case r.CreatedBy != model.ProvenanceAI && r.CreatedBy != model.ProvenanceHuman:
		return fmt.Errorf("%w: provenance %q", ErrInvalidRecord, r.CreatedBy)
	}
	return nil
}

func prepareAll(applicationID string, records []model.ScoreRecord, cfg func(model.ScoreRecord) model.ScoreRecord) ([]model.ScoreRecord, error) {
	out := make([]model.ScoreRecord, len(records))
	seen := make(map[model.Category]struct{}, len(records))
	for i, r := range records {
		if r.ApplicationID == "" {
			r.ApplicationID = applicationID
		}
		if r.ApplicationID != applicationID {
			return nil, fmt.Errorf("%w: %s", ErrForeignRecord, r.ApplicationID)
		}
		r = cfg(r)
		if r.CreatedBy != model.ProvenanceAI {
			return nil, fmt.Errorf("%w: replacement must be ai", ErrInvalidRecord)
		}
		if err := validate(r); err != nil {
			return nil, err
		}
		if _, dup := seen[r.Category]; dup {
			return nil, fmt.Errorf("%w: category %q repeated", ErrInvalidRecord, r.Category)
		}
		seen[r.Category] = struct{}{}
		out[i] = r
	}
	return out, nil
}
