package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizdeck/internal/config"
	"quizdeck/internal/customdomains"
	"quizdeck/internal/domains"
	"quizdeck/internal/presence"
	"quizdeck/internal/quizzes"
)

func newTestRouter(t *testing.T) (http.Handler, Services) {
	t.Helper()

	svcs := Services{
		Sessions:      newTestSessionManager(),
		Presence:      presence.NewService(presence.NewInMemoryRepository(), 10*time.Minute),
		Domains:       domains.NewService(domains.NewInMemoryRepository(nil)),
		CustomDomains: customdomains.NewService(customdomains.NewInMemoryRepository()),
		Quizzes:       quizzes.NewService(quizzes.NewInMemoryRepository()),
	}
	cfg := config.Config{
		Environment:    "development",
		FrontendOrigin: "http://localhost:3000",
	}
	return NewRouter(cfg, svcs, nil, nil, discardLogger()), svcs
}

func loginTestSession(t *testing.T, svcs Services) *http.Cookie {
	t.Helper()

	_, token, err := svcs.Sessions.CompleteHandshake(context.Background(), googleProfile(), "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("complete handshake: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func TestRouterGatesDomainMutations(t *testing.T) {
	router, svcs := newTestRouter(t)
	body := `{"id":"anatomy","title":"Anatomy","icon":"skeleton","color":"#f00","bg":"#fee","programs":["nursing"]}`

	req := httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/domains/create", strings.NewReader(body))
	req.AddCookie(loginTestSession(t, svcs))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with a session, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterGatesCustomDomainMutations(t *testing.T) {
	router, svcs := newTestRouter(t)
	body := `{"name":"Cardiology Review","userId":"7f3c9a44-1d2b-4a3e-9d61-2f8a0c6b5e10","userPrompt":"focus on arrhythmias"}`

	req := httptest.NewRequest(http.MethodPost, "/api/custom-domains", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/custom-domains", strings.NewReader(body))
	req.AddCookie(loginTestSession(t, svcs))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with a session, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterLeavesReadsAndGuestFlowsOpen(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{"/api/domains", "/api/presence", "/health"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, rec.Code)
		}
	}
}
