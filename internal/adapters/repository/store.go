// Package repository defines the score and evidence stores and their
// memory and Postgres implementations.
package repository

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/pkg/metrics"
)

// Filter selects score records. Zero fields do not constrain.
type Filter struct {
	ApplicationIDs []string
	Categories     []model.Category
	Provenance     model.Provenance
	Since          time.Time // inclusive
	Until          time.Time // exclusive
}

// Match reports whether r satisfies f.
func (f Filter) Match(r model.ScoreRecord) bool {
	if len(f.ApplicationIDs) > 0 && !slices.Contains(f.ApplicationIDs, r.ApplicationID) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, r.Category) {
		return false
	}
	if f.Provenance != "" && r.CreatedBy != f.Provenance {
		return false
	}
	if !f.Since.IsZero() && r.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !r.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// ScoreStore persists score records.
type ScoreStore interface {
	// Create stores one record, assigning an ID and timestamp when missing.
	Create(ctx context.Context, r model.ScoreRecord) (model.ScoreRecord, error)

	// ReplaceAI atomically drops every AI record of the application and
	// stores records in their place. Human records are untouched.
	ReplaceAI(ctx context.Context, applicationID string, records []model.ScoreRecord) ([]model.ScoreRecord, error)

	// DeleteByApplication removes every record of the application and
	// returns how many were removed.
	DeleteByApplication(ctx context.Context, applicationID string) (int, error)

	// List returns matching records ordered by application, category and creation time.
	List(ctx context.Context, f Filter) ([]model.ScoreRecord, error)
}

// HistoryQuery locates comparable applications. Empty JobID or CompanyID do
// not constrain; Limit <= 0 is unlimited.
type HistoryQuery struct {
	ExcludeApplicationID string
	JobID                string
	CompanyID            string
	Statuses             []string
	Since                time.Time
	Limit                int
}

// Match reports whether a satisfies q, ignoring Limit.
func (q HistoryQuery) Match(a model.Application) bool {
	if a.ID == q.ExcludeApplicationID {
		return false
	}
	if q.JobID != "" && a.JobID != q.JobID {
		return false
	}
	if q.CompanyID != "" && a.CompanyID != q.CompanyID {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, a.Status) {
		return false
	}
	return q.Since.IsZero() || !a.CreatedAt.Before(q.Since)
}

// EvidenceSource reads the platform data the engine scores.
type EvidenceSource interface {
	// Application returns ErrNotFound for unknown ids.
	Application(ctx context.Context, id string) (model.Application, error)
	// Bundle returns ErrNotFound for unknown ids.
	Bundle(ctx context.Context, applicationID string) (model.Bundle, error)
	// SimilarApplications returns matches newest first.
	SimilarApplications(ctx context.Context, q HistoryQuery) ([]model.Application, error)
}

// prepare fills the generated fields of a record.
func prepare(r model.ScoreRecord, now time.Time) model.ScoreRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.CreatedBy == "" {
		r.CreatedBy = model.ProvenanceAI
	}
	if r.Evidence == nil {
		r.Evidence = []string{}
	}
	return r
}

func sortRecords(records []model.ScoreRecord) {
	slices.SortStableFunc(records, func(a, b model.ScoreRecord) int {
		switch {
		case a.ApplicationID != b.ApplicationID:
			if a.ApplicationID < b.ApplicationID {
				return -1
			}
			return 1
		case a.Category != b.Category:
			if a.Category < b.Category {
				return -1
			}
			return 1
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})
}

// observe records latency and failures of one store operation.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordStoreError(op)
	}
}
