package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
)

// PGEvidence implements EvidenceSource over the application_evidence table,
// which holds a snapshot of each application and its assessment bundle.
type PGEvidence struct {
	DB *sql.DB
}

// NewPGEvidence wraps db.
func NewPGEvidence(db *sql.DB) *PGEvidence {
	return &PGEvidence{DB: db}
}

const applicationColumns = `application_id, job_id, company_id, candidate_id, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (model.Application, error) {
	var a model.Application
	err := row.Scan(&a.ID, &a.JobID, &a.CompanyID, &a.CandidateID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Application reads one application.
func (e *PGEvidence) Application(ctx context.Context, id string) (model.Application, error) {
	if e.DB == nil {
		return model.Application{}, ErrMissingDB
	}
	a, err := scanApplication(e.DB.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM application_evidence WHERE application_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Application{}, ErrNotFound
	}
	if err != nil {
		return model.Application{}, fmt.Errorf("read application %s: %w", id, err)
	}
	return a, nil
}

// Bundle reads the evidence snapshot of an application.
func (e *PGEvidence) Bundle(ctx context.Context, applicationID string) (model.Bundle, error) {
	if e.DB == nil {
		return model.Bundle{}, ErrMissingDB
	}
	var raw []byte
	err := e.DB.QueryRowContext(ctx,
		`SELECT bundle FROM application_evidence WHERE application_id = $1`, applicationID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bundle{}, ErrNotFound
	}
	if err != nil {
		return model.Bundle{}, fmt.Errorf("read bundle %s: %w", applicationID, err)
	}
	var b model.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return model.Bundle{}, fmt.Errorf("decode bundle %s: %w", applicationID, err)
	}
	return b, nil
}

// SimilarApplications returns matching applications newest first.
func (e *PGEvidence) SimilarApplications(ctx context.Context, q HistoryQuery) ([]model.Application, error) {
	if e.DB == nil {
		return nil, ErrMissingDB
	}
	query, args := similarQuery(q)
	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similar applications: %w", err)
	}
	defer rows.Close()

	var out []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func similarQuery(q HistoryQuery) (string, []any) {
	var p placeholders
	where := []string{"application_id <> " + p.add(q.ExcludeApplicationID)}
	if q.JobID != "" {
		where = append(where, "job_id = "+p.add(q.JobID))
	}
	if q.CompanyID != "" {
		where = append(where, "company_id = "+p.add(q.CompanyID))
	}
	if len(q.Statuses) > 0 {
		where = append(where, p.in("status", q.Statuses))
	}
	if !q.Since.IsZero() {
		where = append(where, "created_at >= "+p.add(q.Since))
	}
	query := `SELECT ` + applicationColumns + ` FROM application_evidence WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC, application_id`
	if q.Limit > 0 {
		query += " LIMIT " + p.add(q.Limit)
	}
	return query, p.args
}

// Upsert stores or refreshes an application snapshot.
func (e *PGEvidence) Upsert(ctx context.Context, a model.Application, b model.Bundle) error {
	if e.DB == nil {
		return ErrMissingDB
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	_, err = e.DB.ExecContext(ctx, `
INSERT INTO application_evidence (application_id, job_id, company_id, candidate_id, status, bundle, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (application_id) DO UPDATE SET
	job_id = EXCLUDED.job_id,
	company_id = EXCLUDED.company_id,
	candidate_id = EXCLUDED.candidate_id,
	status = EXCLUDED.status,
	bundle = EXCLUDED.bundle,
	updated_at = EXCLUDED.updated_at`,
		a.ID, a.JobID, a.CompanyID, a.CandidateID, a.Status, string(raw), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert application %s: %w", a.ID, err)
	}
	return nil
}
