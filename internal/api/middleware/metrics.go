package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/parley-chat/parley/internal/metrics"
)

// Metrics returns middleware that records Prometheus metrics. The wrapper
// preserves http.Hijacker, which the /ws upgrade needs to take over the
// connection.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if r.URL.Path == "/ws" {
			// Connection counts are recorded by the chat component, and an
			// upgrade's duration is the connection lifetime, not a latency.
			return
		}

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(ww.Status()),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// normalizePath collapses room IDs to avoid high cardinality in metrics.
func normalizePath(path string) string {
	const prefix = "/api/rooms/"
	if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
		rest := path[len(prefix):]
		switch {
		case strings.HasSuffix(rest, "/messages"):
			return "/api/rooms/:id/messages"
		case strings.HasSuffix(rest, "/join"):
			return "/api/rooms/:id/join"
		default:
			return "/api/rooms/:id"
		}
	}
	return path
}
