// Package model contains domain models passed between layers.
package model

import "fmt"

// Category is one of the five evaluation dimensions.
type Category string

// Evaluation categories. CategoryOverall is derived and never produced by a scorer.
const (
	CategoryTechnical     Category = "technical"
	CategoryCommunication Category = "communication"
	CategoryCulturalFit   Category = "cultural_fit"
	CategoryCognitive     Category = "cognitive"
	CategoryBehavioral    Category = "behavioral"

	CategoryOverall Category = "overall"
)

// Categories returns the scored categories in their canonical order.
func Categories() []Category {
	return []Category{
		CategoryTechnical,
		CategoryCommunication,
		CategoryCulturalFit,
		CategoryCognitive,
		CategoryBehavioral,
	}
}

// Valid reports whether c is one of the five scored categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryCommunication, CategoryCulturalFit, CategoryCognitive, CategoryBehavioral:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory converts s to a scored Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
