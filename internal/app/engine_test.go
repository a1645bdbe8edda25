package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/app"
	"github.com/okian/talentscore/internal/domain/bias"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/internal/domain/prediction"
	"github.com/okian/talentscore/internal/domain/scoring"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubGenerator answers each prompt kind with a canned completion and counts
// category calls.
type stubGenerator struct {
	scores        map[model.Category]float64
	confidence    float64
	fairness      float64
	categoryCalls atomic.Int64
}

func newStubGenerator() *stubGenerator {
	return &stubGenerator{
		scores: map[model.Category]float64{
			model.CategoryTechnical:     90,
			model.CategoryCommunication: 80,
			model.CategoryCulturalFit:   70,
			model.CategoryCognitive:     60,
			model.CategoryBehavioral:    50,
		},
		confidence: 0.8,
		fairness:   1.0,
	}
}

func (g *stubGenerator) Complete(_ context.Context, p scoring.Prompt) (string, error) {
	switch {
	case strings.Contains(p.System, "bias detection"):
		return mustJSON(map[string]any{
			"bias_indicators":     []string{},
			"confidence_level":    "high",
			"affected_categories": []string{},
			"recommendations":     []string{"Keep reviewing interview questions"},
			"fairness_score":      g.fairness,
		}), nil
	case strings.Contains(p.System, "explainable"):
		return mustJSON(map[string]any{
			"executive_summary":     "Solid candidate",
			"key_strengths":         []string{"technical depth"},
			"areas_for_improvement": []string{"behavioral examples"},
			"recommendation":        "hire",
			"confidence_level":      "high",
			"next_steps":            []string{"team interview"},
			"score_breakdown":       "strong technical, average behavioral",
			"bias_considerations":   []string{},
		}), nil
	case strings.Contains(p.System, "talent acquisition"):
		return mustJSON(map[string]any{
			"top_candidates_summary":      "Two strong leads",
			"score_distribution_analysis": "Even spread",
			"hiring_recommendations":      []string{"interview the top two"},
			"talent_pool_quality":         "good",
			"competitive_analysis":        "competitive",
			"next_steps":                  []string{"schedule"},
		}), nil
	}
	for c, s := range g.scores {
		if strings.Contains(p.System, "evaluating "+strings.ReplaceAll(string(c), "_", " ")+" skills") {
			g.categoryCalls.Add(1)
			return mustJSON(map[string]any{
				"score":      s,
				"confidence": g.confidence,
				"reasoning":  "evaluated " + string(c),
				"evidence":   []string{"answer to question 1"},
				"strengths":  []string{"clear"},
				"weaknesses": []string{},
			}), nil
		}
	}
	return "", errors.New("unexpected prompt")
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

var errUpstream = errors.New("upstream unavailable")

type fixture struct {
	ctx      context.Context
	clock    *testClock
	store    *repository.MemoryScoreStore
	evidence *repository.MemoryEvidence
	gen      *stubGenerator
	engine   *app.Engine
}

func newFixture(g scoring.Generator, opts ...app.Option) fixture {
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	f := fixture{
		ctx:      context.Background(),
		clock:    clock,
		store:    repository.NewMemoryScoreStore(repository.WithClock(clock.Now)),
		evidence: repository.NewMemoryEvidence(),
	}
	if sg, ok := g.(*stubGenerator); ok {
		f.gen = sg
	}
	opts = append([]app.Option{app.WithClock(clock.Now)}, opts...)
	e, err := app.New(f.store, f.evidence, g, opts...)
	if err != nil {
		panic(err)
	}
	f.engine = e
	return f
}

func (f fixture) putApplication(id, job, company, status string, age time.Duration) {
	created := f.clock.Now().Add(-age)
	f.evidence.Put(model.Application{
		ID:        id,
		JobID:     job,
		CompanyID: company,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created.Add(72 * time.Hour),
	}, model.Bundle{
		Application: model.ApplicationSummary{ID: id, Status: status, AppliedAt: created},
		Candidate:   model.CandidateSummary{ID: "cand-" + id, Summary: "Backend engineer"},
		Job:         model.JobSummary{ID: job, CompanyID: company, Title: "Go Engineer"},
	})
}

// seed stores the same AI score in every category of id.
func (f fixture) seed(id string, score float64) {
	recs := make([]model.ScoreRecord, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		recs = append(recs, model.ScoreRecord{Category: c, Score: score, Confidence: 0.8, CreatedBy: model.ProvenanceAI})
	}
	if _, err := f.store.ReplaceAI(f.ctx, id, recs); err != nil {
		panic(err)
	}
}

func TestNew(t *testing.T) {
	Convey("New validates its dependencies", t, func() {
		_, err := app.New(nil, repository.NewMemoryEvidence(), nil)
		So(errors.Is(err, app.ErrMissingStore), ShouldBeTrue)

		_, err = app.New(repository.NewMemoryScoreStore(), nil, nil)
		So(errors.Is(err, app.ErrMissingSource), ShouldBeTrue)

		_, err = app.New(repository.NewMemoryScoreStore(), repository.NewMemoryEvidence(), nil,
			app.WithWeights(model.Weights{model.CategoryTechnical: 2}))
		So(errors.Is(err, app.ErrInvalidWeights), ShouldBeTrue)

		e, err := app.New(repository.NewMemoryScoreStore(), repository.NewMemoryEvidence(), nil)
		So(err, ShouldBeNil)
		So(e.Weights(), ShouldResemble, model.DefaultWeights())
	})
}

func TestCalculateScores(t *testing.T) {
	Convey("Given an engine with a healthy generator", t, func() {
		f := newFixture(newStubGenerator())
		f.putApplication("app-1", "job-1", "co-1", "screening", time.Hour)

		Convey("default weights aggregate 90/80/70/60/50 to 75 and grade C", func() {
			res, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})
			So(err, ShouldBeNil)
			So(res.FromCache, ShouldBeFalse)
			So(res.Overall.Score, ShouldAlmostEqual, 75.0, 1e-9)
			So(res.Overall.Grade, ShouldEqual, model.GradeC)
			So(res.Overall.Confidence, ShouldAlmostEqual, 0.8, 1e-9)
			So(res.Categories, ShouldHaveLength, 5)
			So(res.Records, ShouldHaveLength, 5)
			So(res.Explanation, ShouldNotBeNil)
			So(res.Explanation.Fallback, ShouldBeFalse)
			So(res.ModelVersion, ShouldEqual, app.ModelVersion)
			for i, c := range model.Categories() {
				So(res.Categories[i].Category, ShouldEqual, c)
			}
		})

		Convey("forced recalculation leaves exactly one AI record per category", func() {
			human, err := f.store.Create(f.ctx, model.ScoreRecord{
				ApplicationID: "app-1", Category: model.CategoryTechnical, Score: 65, Confidence: 1, CreatedBy: model.ProvenanceHuman,
			})
			So(err, ShouldBeNil)

			for range 3 {
				_, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1", Force: true})
				So(err, ShouldBeNil)
				f.clock.Advance(time.Minute)
			}

			ai, err := f.store.List(f.ctx, repository.Filter{ApplicationIDs: []string{"app-1"}, Provenance: model.ProvenanceAI})
			So(err, ShouldBeNil)
			So(ai, ShouldHaveLength, len(model.Categories()))
			seen := map[model.Category]int{}
			for _, r := range ai {
				seen[r.Category]++
			}
			for _, c := range model.Categories() {
				So(seen[c], ShouldEqual, 1)
			}

			humans, err := f.store.List(f.ctx, repository.Filter{ApplicationIDs: []string{"app-1"}, Provenance: model.ProvenanceHuman})
			So(err, ShouldBeNil)
			So(humans, ShouldHaveLength, 1)
			So(humans[0].ID, ShouldEqual, human.ID)
		})

		Convey("fresh stored scores are reused until they age out", func() {
			_, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})
			So(err, ShouldBeNil)
			So(f.gen.categoryCalls.Load(), ShouldEqual, int64(5))

			f.clock.Advance(time.Hour)
			cached, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})
			So(err, ShouldBeNil)
			So(cached.FromCache, ShouldBeTrue)
			So(cached.Overall.Score, ShouldAlmostEqual, 75.0, 1e-9)
			So(cached.Explanation, ShouldBeNil)
			So(f.gen.categoryCalls.Load(), ShouldEqual, int64(5))

			forced, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1", Force: true})
			So(err, ShouldBeNil)
			So(forced.FromCache, ShouldBeFalse)
			So(f.gen.categoryCalls.Load(), ShouldEqual, int64(10))

			f.clock.Advance(25 * time.Hour)
			stale, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})
			So(err, ShouldBeNil)
			So(stale.FromCache, ShouldBeFalse)
			So(f.gen.categoryCalls.Load(), ShouldEqual, int64(15))
		})

		Convey("request weights normalize over the weight present", func() {
			res, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{
				ApplicationID: "app-1",
				Weights:       model.Weights{model.CategoryTechnical: 0.3, model.CategoryCommunication: 0.25},
			})
			So(err, ShouldBeNil)
			So(res.Overall.Score, ShouldAlmostEqual, 85.45, 1e-9)
			So(res.Overall.Grade, ShouldEqual, model.GradeB)
		})

		Convey("invalid request weights are rejected before anything is stored", func() {
			_, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{
				ApplicationID: "app-1",
				Weights:       model.Weights{model.CategoryTechnical: -0.1},
			})
			So(errors.Is(err, app.ErrInvalidWeights), ShouldBeTrue)
			So(f.gen.categoryCalls.Load(), ShouldEqual, int64(0))

			recs, err := f.store.List(f.ctx, repository.Filter{ApplicationIDs: []string{"app-1"}})
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("an unknown application is an evidence not found error", func() {
			_, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "ghost"})
			So(errors.Is(err, app.ErrEvidenceNotFound), ShouldBeTrue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("a supplied bundle needs no evidence lookup", func() {
			bundle := &model.Bundle{Job: model.JobSummary{Title: "Data Engineer"}}
			res, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "walk-in", Bundle: bundle})
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 5)

			_, err = f.engine.CalculateScores(f.ctx, app.CalculateRequest{
				ApplicationID: "walk-in",
				Bundle:        &model.Bundle{Application: model.ApplicationSummary{ID: "other"}},
				Force:         true,
			})
			So(errors.Is(err, app.ErrInvalidRequest), ShouldBeTrue)
		})

		Convey("an empty application id is invalid", func() {
			_, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{})
			So(errors.Is(err, app.ErrInvalidRequest), ShouldBeTrue)
		})
	})

	Convey("Given a generator returning out of range values", t, func() {
		g := newStubGenerator()
		for c := range g.scores {
			g.scores[c] = 150
		}
		g.confidence = 2
		f := newFixture(g)
		f.putApplication("app-1", "job-1", "co-1", "screening", time.Hour)

		res, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})
		So(err, ShouldBeNil)
		for _, r := range res.Categories {
			So(r.Score, ShouldBeBetweenOrEqual, 0, 100)
			So(r.Confidence, ShouldBeBetweenOrEqual, 0, 1)
		}
		So(res.Overall.Score, ShouldEqual, 100.0)
		So(res.Overall.Grade, ShouldEqual, model.GradeA)
	})

	Convey("Given a generator that always fails", t, func() {
		f := newFixture(scoring.GeneratorFunc(func(context.Context, scoring.Prompt) (string, error) {
			return "", errUpstream
		}), app.WithGenerationTimeout(time.Second))
		f.putApplication("app-1", "job-1", "co-1", "screening", time.Hour)

		res, err := f.engine.CalculateScores(f.ctx, app.CalculateRequest{ApplicationID: "app-1"})

		Convey("scoring still completes with fallback values", func() {
			So(err, ShouldBeNil)
			So(res.Overall.Score, ShouldEqual, 50.0)
			So(res.Overall.Grade, ShouldEqual, model.GradeF)
			So(res.Categories, ShouldHaveLength, 5)
			for _, r := range res.Categories {
				So(r.Fallback, ShouldBeTrue)
				So(r.Score, ShouldEqual, scoring.FallbackScore)
				So(r.Confidence, ShouldEqual, scoring.FallbackConfidence)
				So(r.Weaknesses, ShouldContain, scoring.FallbackWeakness)
			}
			So(res.Explanation.Fallback, ShouldBeTrue)
		})

		Convey("fallback scores are persisted like any other", func() {
			recs, err := f.store.List(f.ctx, repository.Filter{ApplicationIDs: []string{"app-1"}})
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 5)
		})
	})

	Convey("Without any generator every category falls back", t, func() {
		f := newFixture(nil)
		f.putApplication("app-1", "job-1", "co-1", "screening", time.Hour)
		So(f.engine.ScoreApplication(f.ctx, "app-1", false), ShouldBeNil)

		res, err := f.engine.GetScores(f.ctx, "app-1")
		So(err, ShouldBeNil)
		So(res.Overall.Score, ShouldEqual, 50.0)
		So(res.Overall.Grade, ShouldEqual, model.GradeF)
	})
}

func TestGetAndDeleteScores(t *testing.T) {
	Convey("Given stored scores", t, func() {
		f := newFixture(newStubGenerator())
		f.seed("app-1", 72)

		Convey("GetScores aggregates them", func() {
			res, err := f.engine.GetScores(f.ctx, "app-1")
			So(err, ShouldBeNil)
			So(res.Overall.Score, ShouldEqual, 72.0)
			So(res.Categories, ShouldHaveLength, 5)
			So(res.FromCache, ShouldBeFalse)
		})

		Convey("DeleteScores removes them all", func() {
			n, err := f.engine.DeleteScores(f.ctx, "app-1")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 5)

			_, err = f.engine.GetScores(f.ctx, "app-1")
			So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
		})
	})
}

func TestDetectBias(t *testing.T) {
	Convey("Given four scored applications split by gender", t, func() {
		f := newFixture(newStubGenerator())
		ids := []string{"a", "b", "c", "d"}
		for i, s := range []float64{80, 82, 60, 62} {
			f.putApplication(ids[i], "job-1", "co-1", "screening", time.Hour)
			f.seed(ids[i], s)
		}
		demographics := bias.Demographics{
			bias.AttributeGender: {"a": "m", "b": "m", "c": "f", "d": "f"},
		}

		Convey("a significant gap raises the risk to medium", func() {
			rep, err := f.engine.DetectBias(f.ctx, ids, demographics)
			So(err, ShouldBeNil)
			So(rep.SampleSize, ShouldEqual, 4)
			So(rep.ScoredSize, ShouldEqual, 4)
			So(rep.Statistical.Parity, ShouldHaveLength, 1)
			So(rep.Statistical.Parity[0].Significant, ShouldBeTrue)
			So(rep.Assessment.RiskScore, ShouldAlmostEqual, 0.5, 1e-9)
			So(rep.Assessment.RiskLevel, ShouldEqual, model.RiskMedium)
			So(rep.Assessment.RequiresReview, ShouldBeTrue)
			So(rep.Heuristic.Fallback, ShouldBeFalse)
			So(rep.Recommendations, ShouldContain, "Keep reviewing interview questions")
		})

		Convey("adding the significant attribute never lowers the risk", func() {
			without, err := f.engine.DetectBias(f.ctx, ids, nil)
			So(err, ShouldBeNil)
			with, err := f.engine.DetectBias(f.ctx, ids, demographics)
			So(err, ShouldBeNil)
			So(with.Assessment.RiskScore, ShouldBeGreaterThanOrEqualTo, without.Assessment.RiskScore)
			So(without.Assessment.RiskLevel, ShouldEqual, model.RiskLow)
		})

		Convey("unscored ids are counted but not analyzed", func() {
			rep, err := f.engine.DetectBias(f.ctx, append(ids, "unscored", "a"), nil)
			So(err, ShouldBeNil)
			So(rep.SampleSize, ShouldEqual, 5)
			So(rep.ScoredSize, ShouldEqual, 4)
		})

		Convey("no scores at all is an error", func() {
			_, err := f.engine.DetectBias(f.ctx, []string{"nobody"}, nil)
			So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
		})
	})

	Convey("A failing heuristic pass falls back to neutral fairness", t, func() {
		f := newFixture(nil)
		f.seed("a", 70)
		f.seed("b", 71)

		rep, err := f.engine.DetectBias(f.ctx, []string{"a", "b"}, nil)
		So(err, ShouldBeNil)
		So(rep.Heuristic.Fallback, ShouldBeTrue)
		So(rep.Heuristic.FairnessScore, ShouldEqual, bias.NeutralFairness)
		So(rep.Assessment.RiskScore, ShouldAlmostEqual, 0.25, 1e-9)
		So(rep.Recommendations, ShouldContain, bias.NeutralRecommendation)
	})
}

func TestRank(t *testing.T) {
	Convey("Given five scored applications", t, func() {
		f := newFixture(newStubGenerator())
		ids := []string{"p60", "p90", "p75", "p80", "p70"}
		for _, id := range ids {
			var s float64
			switch id {
			case "p60":
				s = 60
			case "p70":
				s = 70
			case "p75":
				s = 75
			case "p80":
				s = 80
			case "p90":
				s = 90
			}
			f.seed(id, s)
		}

		rep, err := f.engine.Rank(f.ctx, append(ids, "unscored"))
		So(err, ShouldBeNil)

		Convey("candidates are ordered with mid-rank percentiles", func() {
			So(rep.Candidates, ShouldHaveLength, 5)
			So(rep.Candidates[0].ApplicationID, ShouldEqual, "p90")
			So(rep.Candidates[0].Rank, ShouldEqual, 1)
			So(rep.Candidates[2].ApplicationID, ShouldEqual, "p75")
			So(rep.Candidates[2].Percentile, ShouldEqual, 50.0)
			So(rep.Candidates[2].Tier, ShouldEqual, model.TierAverage)
			So(rep.Statistics.TotalCandidates, ShouldEqual, 5)
			So(rep.Insights.Fallback, ShouldBeFalse)
		})
	})

	Convey("Ranking applications without scores fails", t, func() {
		f := newFixture(nil)
		_, err := f.engine.Rank(f.ctx, []string{"x", "y"})
		So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
	})
}

func TestConfidenceIntervals(t *testing.T) {
	Convey("Given an application with job peers", t, func() {
		f := newFixture(newStubGenerator())
		f.putApplication("cur", "job-1", "co-1", "screening", 24*time.Hour)
		f.putApplication("peer-1", "job-1", "co-1", "screening", 48*time.Hour)
		f.putApplication("peer-2", "job-1", "co-1", "screening", 72*time.Hour)
		f.putApplication("old", "job-1", "co-1", "screening", 200*24*time.Hour)
		f.putApplication("solo", "job-2", "co-1", "screening", 24*time.Hour)
		f.seed("cur", 70)
		f.seed("peer-1", 60)
		f.seed("peer-2", 80)
		f.seed("old", 10)
		f.seed("solo", 65)

		Convey("intervals cover every category and the overall score", func() {
			rep, err := f.engine.ConfidenceIntervals(f.ctx, "cur", 0.95)
			So(err, ShouldBeNil)
			So(rep.Intervals, ShouldHaveLength, 6)
			So(rep.HistoricalSampleSize, ShouldEqual, 2)
			So(rep.ConfidenceLevel, ShouldEqual, 0.95)

			est := rep.Intervals[model.CategoryTechnical]
			So(est.History.SampleSize, ShouldEqual, 2)
			So(est.History.Mean, ShouldAlmostEqual, 70, 1e-9)
			So(est.Interval.Lower, ShouldBeLessThanOrEqualTo, 70)
			So(est.Interval.Upper, ShouldBeGreaterThanOrEqualTo, 70)
			So(rep.Intervals[model.CategoryOverall].History.SampleSize, ShouldEqual, 2)
		})

		Convey("an application alone in its job falls back to the company", func() {
			rep, err := f.engine.ConfidenceIntervals(f.ctx, "solo", 0.9)
			So(err, ShouldBeNil)
			So(rep.HistoricalSampleSize, ShouldEqual, 3)
		})

		Convey("levels outside (0,1) are rejected", func() {
			for _, level := range []float64{0, 1, 1.5, -0.2} {
				_, err := f.engine.ConfidenceIntervals(f.ctx, "cur", level)
				So(errors.Is(err, app.ErrInvalidConfidenceLevel), ShouldBeTrue)
			}
		})

		Convey("an application without scores fails", func() {
			_, err := f.engine.ConfidenceIntervals(f.ctx, "nobody", 0.95)
			So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
		})
	})

	Convey("Without history the default spread applies", t, func() {
		f := newFixture(nil)
		f.seed("lonely", 70)

		rep, err := f.engine.ConfidenceIntervals(f.ctx, "lonely", 0.95)
		So(err, ShouldBeNil)
		So(rep.HistoricalSampleSize, ShouldEqual, 0)
		So(rep.Intervals[model.CategoryTechnical].History.SampleSize, ShouldEqual, 0)
		est := rep.Intervals[model.CategoryTechnical]
		So(string(est.Reliability), ShouldNotBeEmpty)
		So(est.Interval.Lower, ShouldBeLessThan, 70)
		So(est.Interval.Upper, ShouldBeGreaterThan, 70)
	})
}

func TestPredictPerformance(t *testing.T) {
	Convey("Given decided applications for the same job", t, func() {
		f := newFixture(newStubGenerator())
		f.putApplication("cur", "job-1", "co-1", "screening", 24*time.Hour)
		f.putApplication("hired", "job-1", "co-1", model.StatusHired, 30*24*time.Hour)
		f.putApplication("rejected", "job-1", "co-1", model.StatusRejected, 40*24*time.Hour)
		f.putApplication("pending", "job-1", "co-1", "screening", 10*24*time.Hour)
		f.seed("cur", 85)
		f.seed("hired", 84)
		f.seed("rejected", 40)
		f.seed("pending", 70)

		rep, err := f.engine.PredictPerformance(f.ctx, "cur", 0)
		So(err, ShouldBeNil)

		Convey("only decided applications inform the prediction", func() {
			So(rep.ApplicationID, ShouldEqual, "cur")
			So(rep.HorizonDays, ShouldEqual, prediction.DefaultHorizonDays)
			So(rep.Metadata.HistoricalSampleSize, ShouldEqual, 2)
			So(rep.Metadata.HireRate, ShouldEqual, 0.5)
			So(rep.Categories, ShouldHaveLength, 5)
			So(rep.Categories[model.CategoryTechnical].SimilarCount, ShouldEqual, 1)
			So(rep.Overall.Probability, ShouldBeBetweenOrEqual, 0, 1)
		})
	})

	Convey("Without outcomes every category takes the neutral default", t, func() {
		f := newFixture(nil)
		f.putApplication("cur", "job-1", "co-1", "screening", time.Hour)
		f.seed("cur", 70)

		rep, err := f.engine.PredictPerformance(f.ctx, "cur", 90)
		So(err, ShouldBeNil)
		So(rep.HorizonDays, ShouldEqual, 90)
		for _, cp := range rep.Categories {
			So(cp.Probability, ShouldEqual, prediction.NoHistoryProbability)
			So(cp.Confidence, ShouldEqual, prediction.NoHistoryConfidence)
			So(cp.Reasoning, ShouldEqual, prediction.NoHistoryReasoning)
		}
		So(rep.Overall.HireRecommendation, ShouldBeFalse)
	})

	Convey("Predicting without scores fails", t, func() {
		f := newFixture(nil)
		_, err := f.engine.PredictPerformance(f.ctx, "nobody", 180)
		So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
	})
}

func TestAnalytics(t *testing.T) {
	Convey("Given scores for several applications", t, func() {
		f := newFixture(nil)
		for i, s := range []float64{55, 65, 75, 85} {
			id := string(rune('a' + i))
			f.seed(id, s)
		}

		Convey("Trends buckets every score into the current period", func() {
			tr, err := f.engine.Trends(f.ctx, nil, 7)
			So(err, ShouldBeNil)
			So(tr.PeriodDays, ShouldEqual, 7)
			So(tr.TotalScores, ShouldEqual, 20)
			So(tr.Periods, ShouldHaveLength, 1)
			So(tr.Periods[0].MeanScore, ShouldEqual, 70.0)
		})

		Convey("Correlations pair every category", func() {
			corr, err := f.engine.Correlations(f.ctx, []string{"a", "b", "c", "d"})
			So(err, ShouldBeNil)
			So(corr.SampleSize, ShouldEqual, 4)
			So(corr.Pairs, ShouldHaveLength, 10)
			So(corr.Pairs[0].R, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Summary grades each application once", func() {
			sum, err := f.engine.Summary(f.ctx, 30)
			So(err, ShouldBeNil)
			So(sum.UniqueApplications, ShouldEqual, 4)
			So(sum.TotalScores, ShouldEqual, 20)
			So(sum.GradeDistribution[model.GradeF], ShouldEqual, 1)
			So(sum.GradeDistribution[model.GradeD], ShouldEqual, 1)
			So(sum.GradeDistribution[model.GradeC], ShouldEqual, 1)
			So(sum.GradeDistribution[model.GradeB], ShouldEqual, 1)
		})
	})
}
