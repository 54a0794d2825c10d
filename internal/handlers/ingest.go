package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/normalizer"
)

// maxIngestBody bounds an ingestion payload.
const maxIngestBody = 1 << 20 // 1MB

// Ingest accepts one producer's native payload, normalizes it, persists the
// alert and publishes the alert-created event. The producer identity comes
// from the URL path (one endpoint per producer family).
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	producer := r.PathValue("producer")

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	record, err := normalizer.Normalize(producer, payload)
	if err != nil {
		// Validation errors are rejected synchronously and never enter
		// the bus.
		switch {
		case errors.Is(err, normalizer.ErrUnsupportedAlertKind):
			writeError(w, http.StatusBadRequest, "unsupported alert producer: "+producer)
		case errors.Is(err, normalizer.ErrParsing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Unexpected normalization failure", "producer", producer, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	a, err := h.repo.CreateAlert(r.Context(), record)
	if err != nil {
		slog.Error("Failed to persist alert", "producer", producer, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The alert row is durably committed; publish happens-after.
	created := &events.AlertCreated{
		AlertID:       a.ID,
		SchemaVersion: events.SchemaVersion,
		Kind:          a.Kind.String(),
		ProducerApp:   a.App,
		RecipientIDs:  record.Recipients,
	}
	if err := h.publisher.PublishAlertCreated(r.Context(), created); err != nil {
		slog.Error("Failed to publish alert created event",
			"alert_id", a.ID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, map[string]string{"alertId": a.ID})
}
