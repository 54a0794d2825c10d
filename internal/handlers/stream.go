package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// heartbeatInterval is how often an SSE comment is written to detect broken
// transports between alerts.
const heartbeatInterval = 30 * time.Second

// Subscribe opens a long-lived server-sent-events stream for the
// authenticated user. Optional app and level query filters restrict which
// alerts the stream receives. A disconnect is a normal termination, not an
// error.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	appFilter := r.URL.Query().Get("app")
	levelFilter := r.URL.Query().Get("level")

	stream := h.subscriptions.Subscribe(userID, appFilter, levelFilter)
	defer h.subscriptions.Unsubscribe(stream)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial comment so proxies flush the response headers immediately.
	fmt.Fprintf(w, ": connected stream_id=%s\n\n", stream.ID())
	flusher.Flush()

	h.metrics.IncrementCustom("streams_opened")
	defer h.metrics.IncrementCustom("streams_closed")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			// Client went away or authorization was revoked mid-stream;
			// the response may already be committed, so this is a clean
			// close.
			slog.Debug("Live stream disconnected",
				"stream_id", stream.ID(),
				"user_id", userID,
			)
			return

		case <-stream.Done():
			// Evicted by a failed push or the janitor.
			return

		case view := <-stream.Events():
			data, err := json.Marshal(view)
			if err != nil {
				slog.Warn("Failed to marshal alert view", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: alert\ndata: %s\n\n", data); err != nil {
				// Broken pipe on a half-closed transport. Never surfaced
				// to the user and never logged above warning.
				slog.Warn("Live stream write failed",
					"stream_id", stream.ID(),
					"user_id", userID,
					"error", err,
				)
				return
			}
			flusher.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				slog.Warn("Live stream heartbeat failed",
					"stream_id", stream.ID(),
					"user_id", userID,
					"error", err,
				)
				return
			}
			flusher.Flush()
		}
	}
}
