package handlers

import (
	"log/slog"
	"net/http"
)

// ComponentMetrics returns the latest metrics snapshot for every hub
// component.
func (h *Handlers) ComponentMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metricsReader == nil {
		writeError(w, http.StatusNotFound, "metrics not enabled")
		return
	}

	snapshots, err := h.metricsReader.GetAllComponentMetrics(r.Context())
	if err != nil {
		slog.Error("Failed to read component metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, snapshots)
}
