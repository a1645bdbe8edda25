// Package ops serves the operational HTTP endpoints: health and metrics.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultCheckTimeout = 2 * time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Gauge reports a point-in-time value shown on the health page.
type Gauge func(ctx context.Context) float64

// Server wires the ops routes.
type Server struct {
	checks       map[string]Check
	gauges       map[string]Gauge
	checkTimeout time.Duration
	logger       logger.Logger
}

type healthResponse struct {
	Status string             `json:"status"`
	Checks map[string]string  `json:"checks,omitempty"`
	Gauges map[string]float64 `json:"gauges,omitempty"`
}

// NewServer creates an ops server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		checks:       map[string]Check{},
		gauges:       map[string]Gauge{},
		checkTimeout: defaultCheckTimeout,
		logger:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches /healthz and /metrics to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("GET /healthz", MetricsMiddleware(http.HandlerFunc(s.HandleHealth), "healthz"))
	mux.Handle("GET /metrics", MetricsMiddleware(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}), "metrics"))
}

// Handler returns a mux with every ops route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// HandleHealth runs every check and answers 200 when all pass, 503 otherwise.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.checkTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for _, name := range sortedKeys(s.checks) {
		if err := s.checks[name](ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", logger.String("check", name), logger.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			metrics.RecordErrorByComponent("ops", "health_"+name)
			continue
		}
		resp.Checks[name] = "ok"
	}

	if len(s.gauges) > 0 {
		resp.Gauges = make(map[string]float64, len(s.gauges))
		for name, g := range s.gauges {
			resp.Gauges[name] = g(ctx)
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
