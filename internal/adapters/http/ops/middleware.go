package ops

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/talentscore/pkg/metrics"
)

// MetricsMiddleware records request count and latency for endpoint, and
// counts responses of 500 and above as ops errors.
func MetricsMiddleware(next http.Handler, endpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(wrapped.statusCode), durationMs)
		if wrapped.statusCode >= http.StatusInternalServerError {
			metrics.RecordErrorByComponent("ops", errorType(wrapped.statusCode))
		}
	})
}

func errorType(statusCode int) string {
	switch statusCode {
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "server_error"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
