package router

import (
	"net/http"
	"time"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/handlers"
)

// NewServer creates a new HTTP server with the router configured.
// WriteTimeout is zero because the streaming endpoint holds its response
// open indefinitely; the read header timeout still bounds slow clients.
func NewServer(port string, h *handlers.Handlers, m handlers.MetricsRecorder) *http.Server {
	router := NewRouter(h, m)
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
