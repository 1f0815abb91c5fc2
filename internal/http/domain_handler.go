package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"quizdeck/internal/domains"
)

// DomainHandler exposes the study-domain catalog endpoints.
type DomainHandler struct {
	service *domains.Service
	logger  *slog.Logger
}

// NewDomainHandler creates a handler.
func NewDomainHandler(service *domains.Service, logger *slog.Logger) *DomainHandler {
	return &DomainHandler{service: service, logger: logger}
}

type domainPayload struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	Bg       string   `json:"bg"`
	Programs []string `json:"programs"`
}

func (p domainPayload) toDomain() domains.Domain {
	return domains.Domain{
		ID:       p.ID,
		Title:    p.Title,
		Icon:     p.Icon,
		Color:    p.Color,
		Bg:       p.Bg,
		Programs: p.Programs,
	}
}

// Create handles POST /api/domains/create
// Accepts either a single domain object or an array for bulk upsert.
func (h *DomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSONBody(w, r, &raw); err != nil {
		writeJSONError(w, err)
		return
	}

	var batch []domainPayload
	if err := json.Unmarshal(raw, &batch); err != nil {
		var single domainPayload
		if err := json.Unmarshal(raw, &single); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		batch = []domainPayload{single}
	}

	inputs := make([]domains.Domain, 0, len(batch))
	for _, p := range batch {
		inputs = append(inputs, p.toDomain())
	}

	stored, err := h.service.UpsertMany(r.Context(), inputs)
	if err != nil {
		if errors.Is(err, domains.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("upsert domains", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store domains")
		return
	}

	if len(stored) == 1 {
		writeJSON(w, http.StatusCreated, stored[0])
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"domains": stored})
}

// List handles GET /api/domains
func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list domains", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list domains")
		return
	}
	if list == nil {
		list = []domains.Domain{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": list})
}

// Get handles GET /api/domains/{id}
func (h *DomainHandler) Get(w http.ResponseWriter, r *http.Request) {
	domain, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain)
}

// Update handles PUT /api/domains/{id}
func (h *DomainHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    *string   `json:"title"`
		Icon     *string   `json:"icon"`
		Color    *string   `json:"color"`
		Bg       *string   `json:"bg"`
		Programs *[]string `json:"programs"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	domain, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), domains.UpdateInput{
		Title:    payload.Title,
		Icon:     payload.Icon,
		Color:    payload.Color,
		Bg:       payload.Bg,
		Programs: payload.Programs,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain)
}

// Delete handles DELETE /api/domains/{id}
func (h *DomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "domain": removed})
}

func (h *DomainHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domains.ErrNotFound):
		writeError(w, http.StatusNotFound, "domain not found")
	case errors.Is(err, domains.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("domain service error", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}
