package model

import (
	"fmt"
	"math"
)

// Weights maps categories to aggregation weights in [0,1].
// They need not sum to one; aggregation normalizes by the weight present.
type Weights map[Category]float64

// DefaultWeights returns the stock category weights.
func DefaultWeights() Weights {
	return Weights{
		CategoryTechnical:     0.30,
		CategoryCommunication: 0.25,
		CategoryCulturalFit:   0.20,
		CategoryCognitive:     0.15,
		CategoryBehavioral:    0.10,
	}
}

// Validate rejects unknown categories, non-finite, negative or >1 weights,
// and maps whose weights are all zero.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: no weights", ErrInvalidWeights)
	}
	var total float64
	for c, v := range w {
		if !c.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidWeights, ErrUnknownCategory, c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidWeights, c)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidWeights, c, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	return nil
}

// Weight returns the weight for c, or zero when absent.
func (w Weights) Weight(c Category) float64 { return w[c] }

// ParseWeights converts a name keyed map (e.g. from configuration) and validates it.
func ParseWeights(m map[string]float64) (Weights, error) {
	w := make(Weights, len(m))
	for k, v := range m {
		w[Category(k)] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
