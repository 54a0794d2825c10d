package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/database"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListAlerts returns the authenticated user's alerts with their read state,
// newest first.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	views, err := h.repo.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		slog.Error("Failed to list alerts", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, views)
}

// readStateRequest is the body for read/unread mutations.
type readStateRequest struct {
	AlertStatusID string `json:"alertStatusId"`
}

func (h *Handlers) setReadState(w http.ResponseWriter, r *http.Request, read bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req readStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AlertStatusID == "" {
		writeError(w, http.StatusBadRequest, "alertStatusId is required")
		return
	}

	var err error
	if read {
		err = h.repo.MarkRead(r.Context(), req.AlertStatusID, userID)
	} else {
		err = h.repo.MarkUnread(r.Context(), req.AlertStatusID, userID)
	}
	if err != nil {
		if errors.Is(err, database.ErrStatusNotFound) {
			writeError(w, http.StatusNotFound, "alert status not found")
			return
		}
		slog.Error("Failed to update read state",
			"status_id", req.AlertStatusID,
			"user_id", userID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, nil)
}

// MarkRead marks one of the user's alerts as read.
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.setReadState(w, r, true)
}

// MarkUnread marks one of the user's alerts as unread.
func (h *Handlers) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.setReadState(w, r, false)
}

// DeleteAlert removes an alert and, via cascade, all of its statuses.
func (h *Handlers) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	alertID := r.URL.Query().Get("alert_id")
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "alert_id query parameter is required")
		return
	}

	if err := h.repo.DeleteAlert(r.Context(), alertID); err != nil {
		if errors.Is(err, database.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		slog.Error("Failed to delete alert", "alert_id", alertID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, nil)
}
