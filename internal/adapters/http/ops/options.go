package ops

import (
	"time"

	"github.com/okian/talentscore/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCheck adds a named health check.
func WithCheck(name string, c Check) Option {
	return func(s *Server) {
		if name != "" && c != nil {
			s.checks[name] = c
		}
	}
}

// WithGauge adds a named value to the health response.
func WithGauge(name string, g Gauge) Option {
	return func(s *Server) {
		if name != "" && g != nil {
			s.gauges[name] = g
		}
	}
}

// WithCheckTimeout bounds the time all checks may take together.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// WithLogger sets the logger used for failed checks.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
