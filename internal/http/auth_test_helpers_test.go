package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"log/slog"

	"quizdeck/internal/identity"
	"quizdeck/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSessionManager wires a session manager onto in-memory stores, the
// same shape main uses against PostgreSQL.
func newTestSessionManager() *session.Manager {
	identities := identity.NewService(identity.NewInMemoryRepository())
	return session.NewManager(session.NewInMemoryRepository(), identities, 12*time.Hour, "handler-test-secret")
}

// encodeOAuthState creates a base64-encoded JSON state payload for testing.
func encodeOAuthState(state string) string {
	data, _ := json.Marshal(oauthStatePayload{State: state})
	return base64.RawURLEncoding.EncodeToString(data)
}

type fakeGoogleAuthenticator struct {
	authURLBase     string
	lastState       string
	exchangeProfile identity.Profile
	exchangeErr     error
}

func (f *fakeGoogleAuthenticator) AuthURL(state string) string {
	f.lastState = state
	if f.authURLBase == "" {
		f.authURLBase = "https://accounts.google.com/auth?state="
	}
	return f.authURLBase + state
}

func (f *fakeGoogleAuthenticator) Exchange(ctx context.Context, code string) (identity.Profile, error) {
	if f.exchangeErr != nil {
		return identity.Profile{}, f.exchangeErr
	}
	return f.exchangeProfile, nil
}
