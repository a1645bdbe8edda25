package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/talentscore/internal/adapters/http/ops"
	"github.com/okian/talentscore/internal/adapters/mq/queue"
	"github.com/okian/talentscore/internal/config"
	"github.com/okian/talentscore/internal/domain/dedupe"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseArgs(t *testing.T) {
	convey.Convey("Given command line arguments", t, func() {
		force, ids := parseArgs([]string{"app-1", "-force", "", "app-2"})
		convey.So(force, convey.ShouldBeTrue)
		convey.So(ids, convey.ShouldResemble, []string{"app-1", "app-2"})

		force, ids = parseArgs(nil)
		convey.So(force, convey.ShouldBeFalse)
		convey.So(ids, convey.ShouldBeEmpty)
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		t.Setenv("TALENTSCORE_ADDR", ":0")
		t.Setenv("TALENTSCORE_QUEUE_SIZE", "8")
		t.Setenv("TALENTSCORE_WORKER_COUNT", "2")

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.QueueSize, convey.ShouldEqual, 8)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)

		convey.Convey("When no database is configured", func() {
			st, err := openStores(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer st.Close()

			convey.Convey("Then memory stores are used", func() {
				convey.So(st.db, convey.ShouldBeNil)
				convey.So(st.scores, convey.ShouldNotBeNil)
				convey.So(st.evidence, convey.ShouldNotBeNil)
			})

			convey.Convey("Then the engine is built with the configured weights", func() {
				e, err := newEngine(ctx, cfg, st, logger.NewNop())
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Weights(), convey.ShouldResemble, model.DefaultWeights())
			})

			convey.Convey("Then invalid weights are rejected", func() {
				cfg.CategoryWeights = map[string]float64{"charisma": 0.5}
				_, err := newEngine(ctx, cfg, st, logger.NewNop())
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestEnqueue(t *testing.T) {
	convey.Convey("Given a small queue and a pending set", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		pending := dedupe.NewPending()

		convey.Convey("When ids repeat", func() {
			n := enqueue(ctx, q, pending, []string{"a", "a", "b"}, false, logger.NewNop())

			convey.Convey("Then each application is queued once", func() {
				convey.So(n, convey.ShouldEqual, 2)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
				convey.So(pending.Size(), convey.ShouldEqual, int64(2))
			})
		})

		convey.Convey("When the queue is full", func() {
			n := enqueue(ctx, q, pending, []string{"a", "b", "c"}, true, logger.NewNop())

			convey.Convey("Then the rejected id is released for a later attempt", func() {
				convey.So(n, convey.ShouldEqual, 2)
				convey.So(pending.Size(), convey.ShouldEqual, int64(2))
				convey.So(pending.Claim(ctx, "c"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given the ops server handler", t, func() {
		srv := newHTTPServer(":0", ops.NewServer().Handler())

		convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
		convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
		convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)

		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Updating system metrics publishes the process gauges", t, func() {
		updateSystemMetrics()

		goroutines, err := metrics.Total("talentscore_engine_system_goroutines")
		convey.So(err, convey.ShouldBeNil)
		convey.So(goroutines, convey.ShouldBeGreaterThan, 0)

		mem, err := metrics.Total("talentscore_engine_system_memory_usage_bytes")
		convey.So(err, convey.ShouldBeNil)
		convey.So(mem, convey.ShouldBeGreaterThan, 0)
	})
}
