package repository

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okian/talentscore/internal/domain/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPGScoreStoreCreate(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db, Now: func() time.Time { return fixedNow }}

	mock.ExpectExec("INSERT INTO scores").
		WithArgs(sqlmock.AnyArg(), "app-1", "technical", 72.5, 0.9, "solid", `["a"]`, "ai", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r, err := store.Create(context.Background(), model.ScoreRecord{
		ApplicationID: "app-1",
		Category:      model.CategoryTechnical,
		Score:         72.5,
		Confidence:    0.9,
		Reasoning:     "solid",
		Evidence:      []string{"a"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" || !r.CreatedAt.Equal(fixedNow) {
		t.Fatalf("generated fields not set: %+v", r)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreReplaceAIUsesAdvisoryLock(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db, Now: func() time.Time { return fixedNow }}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("app-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM scores WHERE application_id = $1 AND created_by = 'ai'`)).
		WithArgs("app-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("INSERT INTO scores").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scores").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	out, err := store.ReplaceAI(context.Background(), "app-1", []model.ScoreRecord{
		aiRecord("app-1", model.CategoryTechnical, 70),
		aiRecord("app-1", model.CategoryCognitive, 80),
	})
	if err != nil {
		t.Fatalf("ReplaceAI: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreReplaceAIRollsBackOnFailure(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM scores").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO scores").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.ReplaceAI(context.Background(), "app-1", []model.ScoreRecord{aiRecord("app-1", model.CategoryTechnical, 70)})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreReplaceAIValidatesBeforeWriting(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db}

	_, err := store.ReplaceAI(context.Background(), "app-1", []model.ScoreRecord{aiRecord("app-1", model.CategoryTechnical, 170)})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreReplaceAIRejectsRepeatedCategory(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db}

	_, err := store.ReplaceAI(context.Background(), "app-1", []model.ScoreRecord{
		aiRecord("app-1", model.CategoryTechnical, 60),
		aiRecord("app-1", model.CategoryTechnical, 70),
	})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreCreateDuplicateAI(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db, Now: func() time.Time { return fixedNow }}

	mock.ExpectExec("INSERT INTO scores").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "scores_ai_current_idx"})

	_, err := store.Create(context.Background(), aiRecord("app-1", model.CategoryTechnical, 80))
	if !errors.Is(err, ErrDuplicateAI) {
		t.Fatalf("expected ErrDuplicateAI, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreList(t *testing.T) {
	db, mock := newMock(t)
	store := &PGScoreStore{DB: db}

	query := `SELECT id, application_id, category, score, confidence, reasoning, evidence, created_by, created_at FROM scores ` +
		`WHERE application_id IN ($1, $2) AND created_by = $3 ORDER BY application_id, category, created_at`
	rows := sqlmock.NewRows([]string{"id", "application_id", "category", "score", "confidence", "reasoning", "evidence", "created_by", "created_at"}).
		AddRow("id-1", "app-1", "technical", 70.0, 0.8, "ok", []byte(`["x","y"]`), "ai", fixedNow).
		AddRow("id-2", "app-2", "cognitive", 60.0, 0.6, "", []byte(nil), "ai", fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("app-1", "app-2", "ai").WillReturnRows(rows)

	out, err := store.List(context.Background(), Filter{ApplicationIDs: []string{"app-1", "app-2"}, Provenance: model.ProvenanceAI})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Category != model.CategoryTechnical || len(out[0].Evidence) != 2 {
		t.Fatalf("unexpected first record: %+v", out[0])
	}
	if out[1].Evidence == nil || len(out[1].Evidence) != 0 {
		t.Fatalf("expected empty evidence, got %v", out[1].Evidence)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGScoreStoreDelete(t *testing.T) {
	db, mock := newMock(t)
	store := NewPGScoreStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM scores WHERE application_id = $1`)).
		WithArgs("app-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.DeleteByApplication(context.Background(), "app-1")
	if err != nil || n != 3 {
		t.Fatalf("DeleteByApplication = %d, %v", n, err)
	}
}

func TestPGEvidence(t *testing.T) {
	db, mock := newMock(t)
	e := NewPGEvidence(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT application_id, job_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := e.Application(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectQuery("SELECT bundle FROM application_evidence").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"bundle"}).AddRow([]byte(`{"job": {"id": "job-1", "company_id": "co-1", "title": "SRE"}}`)))
	b, err := e.Bundle(ctx, "app-1")
	if err != nil || b.Job.Title != "SRE" {
		t.Fatalf("Bundle = %+v, %v", b, err)
	}

	since := fixedNow.Add(-90 * 24 * time.Hour)
	query := `SELECT application_id, job_id, company_id, candidate_id, status, created_at, updated_at FROM application_evidence ` +
		`WHERE application_id <> $1 AND job_id = $2 AND status IN ($3, $4) AND created_at >= $5 ORDER BY created_at DESC, application_id LIMIT $6`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("app-1", "job-1", "hired", "rejected", since, 100).
		WillReturnRows(sqlmock.NewRows([]string{"application_id", "job_id", "company_id", "candidate_id", "status", "created_at", "updated_at"}).
			AddRow("app-2", "job-1", "co-1", "cand-2", "hired", fixedNow, fixedNow))
	apps, err := e.SimilarApplications(ctx, HistoryQuery{
		ExcludeApplicationID: "app-1",
		JobID:                "job-1",
		Statuses:             []string{model.StatusHired, model.StatusRejected},
		Since:                since,
		Limit:                100,
	})
	if err != nil || len(apps) != 1 || apps[0].Status != model.StatusHired {
		t.Fatalf("SimilarApplications = %+v, %v", apps, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestConnect(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultDBOptions()); !errors.Is(err, ErrEmptyDSN) {
		t.Fatalf("expected ErrEmptyDSN, got %v", err)
	}

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing()

	orig := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			t.Fatalf("unexpected driver %q", driver)
		}
		return db, nil
	}
	t.Cleanup(func() { openDB = orig })

	got, err := Connect(context.Background(), "postgres://example", DefaultDBOptions())
	if err != nil || got != db {
		t.Fatalf("Connect = %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 migrations, got %v", files)
	}
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("RunMigrations(nil) = %v", err)
	}
}
