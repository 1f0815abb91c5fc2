package http

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quizdeck/internal/customdomains"
)

// CustomDomainHandler exposes the user-authored domain endpoints.
type CustomDomainHandler struct {
	service *customdomains.Service
	logger  *slog.Logger
}

// NewCustomDomainHandler creates a handler.
func NewCustomDomainHandler(service *customdomains.Service, logger *slog.Logger) *CustomDomainHandler {
	return &CustomDomainHandler{service: service, logger: logger}
}

// Create handles POST /api/custom-domains
func (h *CustomDomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID        uuid.UUID               `json:"userId"`
		Name          string                  `json:"name"`
		Description   string                  `json:"description"`
		MainTopic     string                  `json:"mainTopic"`
		UserPrompt    string                  `json:"userPrompt"`
		IsAssignment  bool                    `json:"isAssignment"`
		QuestionLimit int                     `json:"questionLimit"`
		Questions     []customdomains.Question `json:"questions"`
		Icon          string                  `json:"icon"`
		Color         string                  `json:"color"`
		Difficulty    int                     `json:"difficulty"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), customdomains.CreateInput{
		UserID:        payload.UserID,
		Name:          payload.Name,
		Description:   payload.Description,
		MainTopic:     payload.MainTopic,
		UserPrompt:    payload.UserPrompt,
		IsAssignment:  payload.IsAssignment,
		QuestionLimit: payload.QuestionLimit,
		Questions:     payload.Questions,
		Icon:          payload.Icon,
		Color:         payload.Color,
		Difficulty:    payload.Difficulty,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListByUser handles GET /api/custom-domains/user/{userId}
func (h *CustomDomainHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.parseUUIDParam(w, r, "userId")
	if !ok {
		return
	}

	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if list == nil {
		list = []customdomains.CustomDomain{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"customDomains": list})
}

// Get handles GET /api/custom-domains/{id}
func (h *CustomDomainHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	domain, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain)
}

// Update handles PUT /api/custom-domains/{id}
func (h *CustomDomainHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload struct {
		Name          *string                   `json:"name"`
		Description   *string                   `json:"description"`
		MainTopic     *string                   `json:"mainTopic"`
		UserPrompt    *string                   `json:"userPrompt"`
		IsAssignment  *bool                     `json:"isAssignment"`
		QuestionLimit *int                      `json:"questionLimit"`
		Questions     *[]customdomains.Question `json:"questions"`
		Icon          *string                   `json:"icon"`
		Color         *string                   `json:"color"`
		Difficulty    *int                      `json:"difficulty"`
		Progress      *int                      `json:"progress"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, customdomains.UpdateInput{
		Name:          payload.Name,
		Description:   payload.Description,
		MainTopic:     payload.MainTopic,
		UserPrompt:    payload.UserPrompt,
		IsAssignment:  payload.IsAssignment,
		QuestionLimit: payload.QuestionLimit,
		Questions:     payload.Questions,
		Icon:          payload.Icon,
		Color:         payload.Color,
		Difficulty:    payload.Difficulty,
		Progress:      payload.Progress,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/custom-domains/{id}
func (h *CustomDomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CustomDomainHandler) parseUUIDParam(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CustomDomainHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customdomains.ErrNotFound):
		writeError(w, http.StatusNotFound, "custom domain not found")
	case errors.Is(err, customdomains.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("custom domain service error", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}
