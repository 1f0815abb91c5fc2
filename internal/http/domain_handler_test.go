package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"quizdeck/internal/domains"
)

func newDomainHandler() *DomainHandler {
	return NewDomainHandler(domains.NewService(domains.NewInMemoryRepository(nil)), discardLogger())
}

func domainBody() string {
	return `{"id":"biology","title":"Biology","icon":"Leaf","color":"green","bg":"bg-green","programs":["nursing"]}`
}

func TestDomainCreateSingleObject(t *testing.T) {
	handler := newDomainHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(domainBody()))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domains.Domain
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID != "biology" || created.Title != "Biology" {
		t.Errorf("unexpected domain %+v", created)
	}
}

func TestDomainCreateArray(t *testing.T) {
	handler := newDomainHandler()

	body := `[` + domainBody() + `,{"id":"chemistry","title":"Chemistry","icon":"Flask","color":"blue","bg":"bg-blue","programs":["pharmacy"]}]`
	req := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Domains []domains.Domain `json:"domains"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Domains) != 2 {
		t.Fatalf("domains = %d, want 2", len(response.Domains))
	}
}

func TestDomainCreateValidation(t *testing.T) {
	handler := newDomainHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(`{"id":"biology"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestDomainGetViaRouter(t *testing.T) {
	handler := newDomainHandler()

	createReq := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(domainBody()))
	handler.Create(httptest.NewRecorder(), createReq)

	r := chi.NewRouter()
	r.Get("/api/domains/{id}", handler.Get)
	r.Delete("/api/domains/{id}", handler.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/domains/biology", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected status 200, got %d", rec.Code)
	}

	missing := httptest.NewRecorder()
	r.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/domains/nope", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing: expected status 404, got %d", missing.Code)
	}

	deleted := httptest.NewRecorder()
	r.ServeHTTP(deleted, httptest.NewRequest(http.MethodDelete, "/api/domains/biology", nil))
	if deleted.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", deleted.Code)
	}

	gone := httptest.NewRecorder()
	r.ServeHTTP(gone, httptest.NewRequest(http.MethodGet, "/api/domains/biology", nil))
	if gone.Code != http.StatusNotFound {
		t.Fatalf("after delete: expected status 404, got %d", gone.Code)
	}
}

func TestDomainUpdatePartialViaRouter(t *testing.T) {
	handler := newDomainHandler()

	createReq := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(domainBody()))
	handler.Create(httptest.NewRecorder(), createReq)

	r := chi.NewRouter()
	r.Put("/api/domains/{id}", handler.Update)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/domains/biology", strings.NewReader(`{"title":"Human Biology"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated domains.Domain
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Title != "Human Biology" {
		t.Errorf("title = %q, want Human Biology", updated.Title)
	}
	if updated.Icon != "Leaf" {
		t.Errorf("icon = %q, untouched field changed", updated.Icon)
	}
}
