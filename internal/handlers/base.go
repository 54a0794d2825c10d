package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Team-SSOK/ssom-backend-sub001/pkg/metrics"
)

// userIDHeader carries the authenticated user identity. The credential
// verifier upstream attaches it before requests reach this core.
const userIDHeader = "X-User-Id"

// Envelope is the uniform success/failure response shape.
type Envelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Result    any    `json:"result,omitempty"`
}

// Handlers wraps dependencies for the HTTP handlers.
type Handlers struct {
	repo          Repository
	publisher     AlertPublisher
	tokens        TokenRegistrar
	subscriptions Subscriptions
	metricsReader *metrics.Reader
	metrics       MetricsRecorder
}

// NewHandlers creates a new handlers instance. A nil metrics recorder
// defaults to a no-op implementation.
func NewHandlers(repo Repository, publisher AlertPublisher, tokens TokenRegistrar, subs Subscriptions, metricsReader *metrics.Reader, m MetricsRecorder) *Handlers {
	if m == nil {
		m = NoOpMetrics{}
	}
	return &Handlers{
		repo:          repo,
		publisher:     publisher,
		tokens:        tokens,
		subscriptions: subs,
		metricsReader: metricsReader,
		metrics:       m,
	}
}

// writeJSON writes the envelope with the given HTTP status.
func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Warn("Failed to encode response envelope", "error", err)
	}
}

// writeSuccess writes a 200 envelope with the result payload.
func writeSuccess(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, Envelope{
		IsSuccess: true,
		Code:      http.StatusOK,
		Message:   "success",
		Result:    result,
	})
}

// writeError writes a failure envelope. Internal detail never leaks to the
// caller; pass a caller-safe message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{
		IsSuccess: false,
		Code:      status,
		Message:   message,
	})
}

// userID extracts the authenticated user identity, writing a 401 envelope
// when it is absent.
func (h *Handlers) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return id, true
}
