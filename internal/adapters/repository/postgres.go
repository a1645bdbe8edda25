package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okian/talentscore/internal/domain/model"
)

// PGScoreStore implements ScoreStore on Postgres.
type PGScoreStore struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewPGScoreStore wraps db.
func NewPGScoreStore(db *sql.DB) *PGScoreStore {
	return &PGScoreStore{DB: db}
}

func (s *PGScoreStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertScore = `
INSERT INTO scores (id, application_id, category, score, confidence, reasoning, evidence, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func insertRecord(ctx context.Context, db execer, r model.ScoreRecord) error {
	evidence, err := json.Marshal(r.Evidence)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, insertScore,
		r.ID,
		r.ApplicationID,
		string(r.Category),
		r.Score,
		r.Confidence,
		r.Reasoning,
		string(evidence),
		string(r.CreatedBy),
		r.CreatedAt,
	)
	return err
}

const uniqueViolation = "23505"

// uniqueAsDuplicate maps a violation of scores_ai_current_idx to ErrDuplicateAI.
func uniqueAsDuplicate(err error, r model.ScoreRecord) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateAI, r.ApplicationID, r.Category)
	}
	return err
}

// Create inserts one record. A second current AI record of a category fails
// with ErrDuplicateAI.
func (s *PGScoreStore) Create(ctx context.Context, r model.ScoreRecord) (model.ScoreRecord, error) {
	start := time.Now()
	r = prepare(r, s.now())
	err := validate(r)
	if err == nil {
		if s.DB == nil {
			err = ErrMissingDB
		} else {
			err = uniqueAsDuplicate(insertRecord(ctx, s.DB, r), r)
		}
	}
	observe("create", start, err)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("create score: %w", err)
	}
	return r, nil
}

// ReplaceAI deletes and inserts in one transaction serialized per
// application by a transaction-scoped advisory lock.
func (s *PGScoreStore) ReplaceAI(ctx context.Context, applicationID string, records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	start := time.Now()
	out, err := s.replaceAI(ctx, applicationID, records)
	observe("replace_ai", start, err)
	if err != nil {
		return nil, fmt.Errorf("replace ai scores: %w", err)
	}
	return out, nil
}

func (s *PGScoreStore) replaceAI(ctx context.Context, applicationID string, records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	if s.DB == nil {
		return nil, ErrMissingDB
	}
	now := s.now()
	prepared, err := prepareAll(applicationID, records, func(r model.ScoreRecord) model.ScoreRecord { return prepare(r, now) })
	if err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, applicationID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE application_id = $1 AND created_by = 'ai'`, applicationID); err != nil {
		return nil, err
	}
	for _, r := range prepared {
		if err := insertRecord(ctx, tx, r); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return prepared, nil
}

// DeleteByApplication removes every record of the application.
func (s *PGScoreStore) DeleteByApplication(ctx context.Context, applicationID string) (int, error) {
	start := time.Now()
	n, err := s.deleteByApplication(ctx, applicationID)
	observe("delete", start, err)
	if err != nil {
		return 0, fmt.Errorf("delete scores: %w", err)
	}
	return n, nil
}

func (s *PGScoreStore) deleteByApplication(ctx context.Context, applicationID string) (int, error) {
	if s.DB == nil {
		return 0, ErrMissingDB
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM scores WHERE application_id = $1`, applicationID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// List returns matching records.
func (s *PGScoreStore) List(ctx context.Context, f Filter) ([]model.ScoreRecord, error) {
	start := time.Now()
	out, err := s.list(ctx, f)
	observe("list", start, err)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return out, nil
}

func (s *PGScoreStore) list(ctx context.Context, f Filter) ([]model.ScoreRecord, error) {
	if s.DB == nil {
		return nil, ErrMissingDB
	}
	query, args := listQuery(f)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScoreRecord
	for rows.Next() {
		var (
			r         model.ScoreRecord
			category  string
			createdBy string
			evidence  []byte
		)
		if err := rows.Scan(&r.ID, &r.ApplicationID, &category, &r.Score, &r.Confidence,
			&r.Reasoning, &evidence, &createdBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Category = model.Category(category)
		r.CreatedBy = model.Provenance(createdBy)
		r.Evidence = []string{}
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &r.Evidence); err != nil {
				return nil, fmt.Errorf("decode evidence of %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// placeholders accumulates positional arguments.
type placeholders struct {
	args []any
}

func (p *placeholders) add(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *placeholders) in(column string, values []string) string {
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = p.add(v)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", "))
}

func listQuery(f Filter) (string, []any) {
	var p placeholders
	var where []string
	if len(f.ApplicationIDs) > 0 {
		where = append(where, p.in("application_id", f.ApplicationIDs))
	}
	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			cats[i] = string(c)
		}
		where = append(where, p.in("category", cats))
	}
	if f.Provenance != "" {
		where = append(where, "created_by = "+p.add(string(f.Provenance)))
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= "+p.add(f.Since))
	}
	if !f.Until.IsZero() {
		where = append(where, "created_at < "+p.add(f.Until))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, application_id, category, score, confidence, reasoning, evidence, created_by, created_at FROM scores`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY application_id, category, created_at")
	return b.String(), p.args
}
