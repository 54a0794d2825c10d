// Package router provides HTTP routing configuration for the alert hub API.
// It sets up routes and applies middleware like CORS and metrics tracking.
package router

import (
	"net/http"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/handlers"
)

// Router wraps the HTTP mux and provides route configuration.
type Router struct {
	mux      *http.ServeMux
	handlers *handlers.Handlers
	metrics  handlers.MetricsRecorder
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *handlers.Handlers, m handlers.MetricsRecorder) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		metrics:  m,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes for the API.
func (r *Router) setupRoutes() {
	// One ingestion endpoint per producer family; each accepts that
	// producer's native JSON shape.
	r.mux.HandleFunc("POST /api/alert/{producer}", r.handlers.Ingest)

	// Streaming, read-state and token endpoints for authenticated users.
	r.mux.HandleFunc("GET /api/alert/subscribe", r.handlers.Subscribe)
	r.mux.HandleFunc("GET /api/alert/list", r.handlers.ListAlerts)
	r.mux.HandleFunc("PATCH /api/alert/read", r.handlers.MarkRead)
	r.mux.HandleFunc("PATCH /api/alert/unread", r.handlers.MarkUnread)
	r.mux.HandleFunc("POST /api/alert/token", r.handlers.RegisterToken)

	// Admin surface.
	r.mux.HandleFunc("DELETE /api/alert", r.handlers.DeleteAlert)
	r.mux.HandleFunc("GET /api/services/metrics", r.handlers.ComponentMetrics)

	// Health check endpoint.
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	return corsMiddleware(metricsMiddleware(r.metrics)(r.mux))
}
