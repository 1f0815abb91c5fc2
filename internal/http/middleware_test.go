package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizdeck/internal/identity"
)

func TestSessionAuthMiddlewareRejectsMissingCookie(t *testing.T) {
	sessions := newTestSessionManager()
	mw := newSessionAuthMiddleware(sessions, discardLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run without a session")
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddlewareRejectsUnknownToken(t *testing.T) {
	sessions := newTestSessionManager()
	mw := newSessionAuthMiddleware(sessions, discardLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for an unknown token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddlewareInjectsIdentity(t *testing.T) {
	sessions := newTestSessionManager()
	_, token, err := sessions.CompleteHandshake(context.Background(), identity.Profile{
		Provider:   identity.ProviderGoogle,
		ProviderID: "google-1",
		Email:      "student@example.com",
	}, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("complete handshake: %v", err)
	}

	mw := newSessionAuthMiddleware(sessions, discardLogger())

	var seen *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if seen == nil || seen.Email != "student@example.com" {
		t.Fatalf("expected identity in context, got %+v", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	mw := newSecurityHeadersMiddleware("production")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("missing HSTS header outside development")
	}

	devRec := httptest.NewRecorder()
	newSecurityHeadersMiddleware("development")(next).ServeHTTP(devRec, httptest.NewRequest(http.MethodGet, "/", nil))
	if devRec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must be absent in development")
	}
}
