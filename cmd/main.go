package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/talentscore/internal/adapters/http/ops"
	"github.com/okian/talentscore/internal/adapters/llm"
	"github.com/okian/talentscore/internal/adapters/mq/queue"
	"github.com/okian/talentscore/internal/adapters/mq/worker"
	"github.com/okian/talentscore/internal/adapters/repository"
	"github.com/okian/talentscore/internal/app"
	"github.com/okian/talentscore/internal/config"
	"github.com/okian/talentscore/internal/domain/dedupe"
	"github.com/okian/talentscore/internal/domain/model"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Application ids given on the command line are queued for scoring at startup.
// A "-force" argument bypasses stored scores for them.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		os.Stderr.WriteString("talentscore: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))
	pending := dedupe.NewPending(dedupe.WithMaxSize(cfg.DedupeSize))
	pool := worker.NewPool(cfg.WorkerCount, q, engine,
		worker.WithLogger(log),
		worker.WithReleaser(pending),
		worker.WithJobTimeout(cfg.GenerationTimeout()*time.Duration(len(model.Categories())+1)),
	)
	pool.Start(ctx)
	go startSystemMetricsUpdater(ctx)

	force, ids := parseArgs(args)
	if n := enqueue(ctx, q, pending, ids, force, log); n > 0 {
		log.Info(ctx, "queued applications", logger.Int("count", n), logger.Bool("force", force))
	}

	opsOpts := []ops.Option{
		ops.WithLogger(log),
		ops.WithGauge("queue_length", func(ctx context.Context) float64 { return float64(q.Len(ctx)) }),
		ops.WithGauge("pending_jobs", func(context.Context) float64 { return float64(pending.Size()) }),
	}
	if st.db != nil {
		opsOpts = append(opsOpts, ops.WithCheck("database", st.db.PingContext))
	}
	srv := newHTTPServer(cfg.Addr, ops.NewServer(opsOpts...).Handler())

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "worker shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
	return nil
}

// stores bundles the persistence backends chosen by configuration.
type stores struct {
	scores   repository.ScoreStore
	evidence repository.EvidenceSource
	db       *sql.DB
}

func (s stores) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// openStores uses Postgres when a database URL is configured and in-memory
// stores otherwise.
func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.DatabaseURL == "" {
		return stores{
			scores:   repository.NewMemoryScoreStore(),
			evidence: repository.NewMemoryEvidence(),
		}, nil
	}
	db, err := repository.Connect(ctx, cfg.DatabaseURL, repository.DefaultDBOptions())
	if err != nil {
		return stores{}, fmt.Errorf("connect database: %w", err)
	}
	if err := repository.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, fmt.Errorf("run migrations: %w", err)
	}
	return stores{
		scores:   repository.NewPGScoreStore(db),
		evidence: repository.NewPGEvidence(db),
		db:       db,
	}, nil
}

func newEngine(ctx context.Context, cfg *config.Config, st stores, log logger.Logger) (*app.Engine, error) {
	weights, err := model.ParseWeights(cfg.CategoryWeights)
	if err != nil {
		return nil, fmt.Errorf("category weights: %w", err)
	}
	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	if gen == nil {
		log.Warn(ctx, "no llm provider configured; generated results will fall back")
	}
	return app.New(st.scores, st.evidence, gen,
		app.WithLogger(log),
		app.WithWeights(weights),
		app.WithGenerationTimeout(cfg.GenerationTimeout()),
		app.WithScoringConcurrency(cfg.ScoringConcurrency),
		app.WithScoreFreshness(cfg.ScoreFreshness()),
		app.WithForceRecalculate(cfg.ForceRecalculate),
		app.WithIntervalLookback(time.Duration(cfg.IntervalLookbackDays)*24*time.Hour),
		app.WithOutcomeLookback(time.Duration(cfg.OutcomeLookbackDays)*24*time.Hour),
		app.WithHistoryCompanyLimit(cfg.HistoryCompanyLimit),
		app.WithHistoryMinJobSample(cfg.HistoryMinJobSample),
	)
}

func parseArgs(args []string) (force bool, ids []string) {
	for _, a := range args {
		switch a {
		case "-force", "--force":
			force = true
		case "":
		default:
			ids = append(ids, a)
		}
	}
	return force, ids
}

// enqueue queues one job per id not already pending and returns how many were queued.
func enqueue(ctx context.Context, q queue.Queue, pending dedupe.Pending, ids []string, force bool, log logger.Logger) int {
	var n int
	for _, id := range ids {
		if !pending.Claim(ctx, id) {
			metrics.RecordJobDeduplicated()
			continue
		}
		if err := q.Enqueue(ctx, queue.Job{ApplicationID: id, Force: force}); err != nil {
			pending.Release(ctx, id)
			log.Warn(ctx, "enqueue failed", logger.String("application_id", id), logger.Error(err))
			continue
		}
		n++
	}
	return n
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater refreshes the process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}
