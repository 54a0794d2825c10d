package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/token"
)

// tokenRequest is the device-token registration body.
type tokenRequest struct {
	Token string `json:"token"`
}

// RegisterToken stores the authenticated user's device push token.
func (h *Handlers) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.tokens.Register(r.Context(), userID, req.Token); err != nil {
		if errors.Is(err, token.ErrBlankToken) {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}
		slog.Error("Failed to register device token", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeSuccess(w, nil)
}
