package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizdeck/internal/presence"
)

func newPresenceHandler() *PresenceHandler {
	svc := presence.NewService(presence.NewInMemoryRepository(), 10*time.Minute)
	return NewPresenceHandler(svc, nil, discardLogger())
}

func TestHeartbeatReturnsRecord(t *testing.T) {
	handler := newPresenceHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/presence", strings.NewReader(`{"email":"Student@Example.com","name":"Student"}`))
	rec := httptest.NewRecorder()
	handler.Heartbeat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Status string          `json:"status"`
		User   presence.Record `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if body.User.Email != "student@example.com" || !body.User.Online {
		t.Errorf("unexpected record %+v", body.User)
	}
}

func TestHeartbeatRequiresEmail(t *testing.T) {
	handler := newPresenceHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/presence", strings.NewReader(`{"name":"Ghost"}`))
	rec := httptest.NewRecorder()
	handler.Heartbeat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email required") {
		t.Errorf("unexpected error body %q", rec.Body.String())
	}
}

func TestAwayUnknownEmailStillOK(t *testing.T) {
	handler := newPresenceHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/presence/away", strings.NewReader(`{"email":"nobody@example.com"}`))
	rec := httptest.NewRecorder()
	handler.Away(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAwayRemovesFromOnlineList(t *testing.T) {
	handler := newPresenceHandler()

	beat := httptest.NewRequest(http.MethodPost, "/api/presence", strings.NewReader(`{"email":"a@example.com"}`))
	handler.Heartbeat(httptest.NewRecorder(), beat)

	away := httptest.NewRequest(http.MethodPost, "/api/presence/away", strings.NewReader(`{"email":"a@example.com"}`))
	awayRec := httptest.NewRecorder()
	handler.Away(awayRec, away)
	if awayRec.Code != http.StatusOK {
		t.Fatalf("away: expected status 200, got %d", awayRec.Code)
	}

	listRec := httptest.NewRecorder()
	handler.ListOnline(listRec, httptest.NewRequest(http.MethodGet, "/api/presence", nil))

	var body struct {
		Status string            `json:"status"`
		Users  []presence.Record `json:"users"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Users) != 0 {
		t.Errorf("users = %+v, want empty after away", body.Users)
	}
}

func TestListOnlineEmptyIsArray(t *testing.T) {
	handler := newPresenceHandler()

	rec := httptest.NewRecorder()
	handler.ListOnline(rec, httptest.NewRequest(http.MethodGet, "/api/presence", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"users":[]`) {
		t.Errorf("expected empty array, got %q", rec.Body.String())
	}
}
