package model

import "time"

// Application statuses the engine reads.
const (
	StatusHired    = "hired"
	StatusRejected = "rejected"
)

// Application is the read model used to locate comparable populations.
type Application struct {
	ID          string
	JobID       string
	CompanyID   string
	CandidateID string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HistoricalOutcome is a decided application with its category scores.
type HistoricalOutcome struct {
	ApplicationID  string
	Hired          bool
	Scores         map[Category]float64
	DaysToDecision float64
}
