package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"quizdeck/internal/quizzes"
)

// QuizHandler exposes quiz attempt recording and the performance export.
type QuizHandler struct {
	service  *quizzes.Service
	exporter *quizzes.CSVExporter
	logger   *slog.Logger
}

// NewQuizHandler creates a handler.
func NewQuizHandler(service *quizzes.Service, exporter *quizzes.CSVExporter, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{service: service, exporter: exporter, logger: logger}
}

// Record handles POST /api/quiz-sessions
func (h *QuizHandler) Record(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string          `json:"email"`
		DomainID  string          `json:"domainId"`
		SessionID string          `json:"sessionId"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	attempt, err := h.service.Record(r.Context(), quizzes.RecordInput{
		Email:     payload.Email,
		DomainID:  payload.DomainID,
		SessionID: payload.SessionID,
		Payload:   payload.Payload,
	})
	if err != nil {
		if errors.Is(err, quizzes.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("record quiz attempt", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record attempt")
		return
	}

	writeJSON(w, http.StatusCreated, attempt)
}

// Performance handles GET /api/quiz-sessions/performance/{domainId}
func (h *QuizHandler) Performance(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.ListByDomain(r.Context(), chi.URLParam(r, "domainId"))
	if err != nil {
		if errors.Is(err, quizzes.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("list quiz attempts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []quizzes.Attempt{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

// Export handles GET /api/quiz-sessions/export/{domainId}
// Streams the domain's attempts as a CSV spreadsheet download.
func (h *QuizHandler) Export(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainId")
	attempts, err := h.service.ListByDomain(r.Context(), domainID)
	if err != nil {
		if errors.Is(err, quizzes.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("export quiz attempts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export attempts")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domainID+"-performance.csv"))
	w.WriteHeader(http.StatusOK)

	if err := h.exporter.Export(w, attempts); err != nil {
		// Headers are already out; all that remains is the log line.
		h.logger.Error("write csv export", "error", err)
	}
}
