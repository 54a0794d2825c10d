package router

import (
	"net/http"
	"time"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/handlers"
)

// corsMiddleware applies CORS headers to all requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
// Flush is forwarded so the streaming endpoint keeps working through the
// middleware chain.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// metricsMiddleware tracks HTTP request metrics.
func metricsMiddleware(m handlers.MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			// Skip the metrics and health endpoints to avoid recursion,
			// and the streaming endpoint whose latency is its lifetime.
			switch r.URL.Path {
			case "/api/services/metrics", "/health", "/api/alert/subscribe":
				next.ServeHTTP(w, r)
				return
			}

			m.RecordReceived()
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			latency := time.Since(start)

			if wrapped.statusCode >= 400 {
				m.RecordError()
			} else {
				m.RecordProcessed(latency)
			}

			m.IncrementCustom("http_" + r.Method)
		})
	}
}
