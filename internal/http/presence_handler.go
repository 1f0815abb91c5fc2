package http

import (
	"errors"
	"net/http"

	"log/slog"

	"quizdeck/internal/metrics"
	"quizdeck/internal/presence"
)

// PresenceHandler exposes the heartbeat endpoints.
type PresenceHandler struct {
	service  *presence.Service
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewPresenceHandler creates a handler.
func NewPresenceHandler(service *presence.Service, recorder metrics.Recorder, logger *slog.Logger) *PresenceHandler {
	return &PresenceHandler{service: service, recorder: recorder, logger: logger}
}

// Heartbeat handles POST /api/presence
// Marks the user online and refreshes their last-seen timestamp.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	record, err := h.service.Heartbeat(r.Context(), payload.Email, payload.Name)
	if err != nil {
		if errors.Is(err, presence.ErrValidation) {
			writeError(w, http.StatusBadRequest, "email required")
			return
		}
		h.logger.Error("presence heartbeat", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record presence")
		return
	}

	if h.recorder != nil {
		h.recorder.RecordHeartbeat()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "user": record})
}

// Away handles POST /api/presence/away
// Marks the user offline. An unknown email is not an error; the client
// fires this on tab close and cannot react to a failure anyway.
func (h *PresenceHandler) Away(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	if err := h.service.MarkAway(r.Context(), payload.Email); err != nil {
		switch {
		case errors.Is(err, presence.ErrValidation):
			writeError(w, http.StatusBadRequest, "email required")
			return
		case errors.Is(err, presence.ErrNotFound):
			// Nothing to mark away; treated as success.
		default:
			h.logger.Error("presence away", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update presence")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListOnline handles GET /api/presence
// Returns everyone seen within the staleness window.
func (h *PresenceHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListOnline(r.Context())
	if err != nil {
		h.logger.Error("presence list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list presence")
		return
	}
	if users == nil {
		users = []presence.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "users": users})
}
