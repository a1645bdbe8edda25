package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/talentscore/internal/domain/model"
)

// MemoryScoreStore keeps records in memory and is safe for concurrent use.
// ReplaceAI holds the write lock for the whole swap.
type MemoryScoreStore struct {
	mu     sync.RWMutex
	byApp  map[string][]model.ScoreRecord
	config memoryConfig
}

// NewMemoryScoreStore constructs an empty store.
func NewMemoryScoreStore(opts ...MemoryOption) *MemoryScoreStore {
	return &MemoryScoreStore{
		byApp:  make(map[string][]model.ScoreRecord),
		config: newMemoryConfig(opts),
	}
}

// Create stores one record. An AI record is rejected with ErrDuplicateAI
// while the application already holds a current AI record of its category.
func (s *MemoryScoreStore) Create(ctx context.Context, r model.ScoreRecord) (model.ScoreRecord, error) {
	start := time.Now()
	out, err := s.create(ctx, r)
	observe("create", start, err)
	return out, err
}

func (s *MemoryScoreStore) create(ctx context.Context, r model.ScoreRecord) (model.ScoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ScoreRecord{}, err
	}
	r = prepare(r, s.config.now())
	if err := validate(r); err != nil {
		return model.ScoreRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedBy == model.ProvenanceAI {
		for _, existing := range s.byApp[r.ApplicationID] {
			if existing.CreatedBy == model.ProvenanceAI && existing.Category == r.Category {
				return model.ScoreRecord{}, fmt.Errorf("%w: %s/%s", ErrDuplicateAI, r.ApplicationID, r.Category)
			}
		}
	}
	s.byApp[r.ApplicationID] = append(s.byApp[r.ApplicationID], r)
	return r, nil
}

// ReplaceAI swaps the application's AI records for records.
func (s *MemoryScoreStore) ReplaceAI(ctx context.Context, applicationID string, records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	start := time.Now()
	out, err := s.replaceAI(ctx, applicationID, records)
	observe("replace_ai", start, err)
	return out, err
}

func (s *MemoryScoreStore) replaceAI(ctx context.Context, applicationID string, records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.config.now()
	prepared, err := prepareAll(applicationID, records, func(r model.ScoreRecord) model.ScoreRecord { return prepare(r, now) })
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := slices.DeleteFunc(slices.Clone(s.byApp[applicationID]), func(r model.ScoreRecord) bool {
		return r.CreatedBy == model.ProvenanceAI
	})
	s.byApp[applicationID] = append(kept, prepared...)
	return prepared, nil
}

// DeleteByApplication removes every record of the application.
func (s *MemoryScoreStore) DeleteByApplication(ctx context.Context, applicationID string) (int, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("delete", start, err)
		return 0, err
	}
	s.mu.Lock()
	n := len(s.byApp[applicationID])
	delete(s.byApp, applicationID)
	s.mu.Unlock()
	observe("delete", start, nil)
	return n, nil
}

// List returns copies of matching records.
func (s *MemoryScoreStore) List(ctx context.Context, f Filter) ([]model.ScoreRecord, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("list", start, err)
		return nil, err
	}

	s.mu.RLock()
	var out []model.ScoreRecord
	if len(f.ApplicationIDs) > 0 {
		for _, id := range f.ApplicationIDs {
			out = appendMatching(out, s.byApp[id], f)
		}
	} else {
		for _, recs := range s.byApp {
			out = appendMatching(out, recs, f)
		}
	}
	s.mu.RUnlock()

	sortRecords(out)
	observe("list", start, nil)
	return out, nil
}

func appendMatching(dst, src []model.ScoreRecord, f Filter) []model.ScoreRecord {
	for _, r := range src {
		if f.Match(r) {
			r.Evidence = slices.Clone(r.Evidence)
			dst = append(dst, r)
		}
	}
	return dst
}

// MemoryEvidence is an in-memory EvidenceSource, used by tests and by the
// service when no database is configured.
type MemoryEvidence struct {
	mu      sync.RWMutex
	apps    map[string]model.Application
	bundles map[string]model.Bundle
}

// NewMemoryEvidence constructs an empty evidence source.
func NewMemoryEvidence() *MemoryEvidence {
	return &MemoryEvidence{
		apps:    make(map[string]model.Application),
		bundles: make(map[string]model.Bundle),
	}
}

// Put stores an application and its evidence.
func (e *MemoryEvidence) Put(app model.Application, bundle model.Bundle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apps[app.ID] = app
	e.bundles[app.ID] = bundle
}

// Application returns the stored application.
func (e *MemoryEvidence) Application(ctx context.Context, id string) (model.Application, error) {
	if err := ctx.Err(); err != nil {
		return model.Application{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.apps[id]
	if !ok {
		return model.Application{}, ErrNotFound
	}
	return a, nil
}

// Bundle returns the stored evidence.
func (e *MemoryEvidence) Bundle(ctx context.Context, applicationID string) (model.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return model.Bundle{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bundles[applicationID]
	if !ok {
		return model.Bundle{}, ErrNotFound
	}
	return b, nil
}

// SimilarApplications returns matching applications newest first.
func (e *MemoryEvidence) SimilarApplications(ctx context.Context, q HistoryQuery) ([]model.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	var out []model.Application
	for _, a := range e.apps {
		if q.Match(a) {
			out = append(out, a)
		}
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
