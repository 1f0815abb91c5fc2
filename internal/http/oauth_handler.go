package http

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quizdeck/internal/identity"
	"quizdeck/internal/metrics"
	"quizdeck/internal/session"
)

const (
	sessionCookieName    = "quizdeck_session"
	sessionCookieTTL     = 12 * time.Hour
	oauthStateCookieName = "quizdeck_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

// oauthStatePayload holds the CSRF state nonce carried through the
// provider round trip.
type oauthStatePayload struct {
	State string `json:"s"`
}

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (identity.Profile, error)
}

// sessionLifecycle is the slice of the session manager the handler needs.
type sessionLifecycle interface {
	BeginHandshake() (string, error)
	CompleteHandshake(ctx context.Context, profile identity.Profile, userAgent, ipAddress string) (*identity.Identity, string, error)
	Logout(ctx context.Context, token string) error
}

// OAuthHandler handles the Google login flow and session endpoints.
type OAuthHandler struct {
	google         googleAuthenticator
	sessions       sessionLifecycle
	recorder       metrics.Recorder
	logger         *slog.Logger
	secureCookie   bool
	frontendOrigin string
}

// NewOAuthHandler creates a new OAuthHandler. google may be nil when the
// OIDC client is not configured; the login endpoints then answer 503.
func NewOAuthHandler(google googleAuthenticator, sessions sessionLifecycle, recorder metrics.Recorder, frontendOrigin, env string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		google:         google,
		sessions:       sessions,
		recorder:       recorder,
		logger:         logger,
		secureCookie:   !strings.EqualFold(env, "development"),
		frontendOrigin: strings.TrimSuffix(frontendOrigin, "/"),
	}
}

// InitiateGoogle handles GET /api/auth/google
// Starts the handshake and redirects the popup to Google's consent screen.
func (h *OAuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusServiceUnavailable, "google login is not configured")
		return
	}

	state, err := h.sessions.BeginHandshake()
	if err != nil {
		h.logger.Error("failed to begin handshake", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// State rides in a short-lived cookie for CSRF verification.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	stateJSON, _ := json.Marshal(oauthStatePayload{State: state})
	fullState := base64.RawURLEncoding.EncodeToString(stateJSON)

	http.Redirect(w, r, h.google.AuthURL(fullState), http.StatusTemporaryRedirect)
}

// CallbackGoogle handles GET /api/auth/google/callback
// Exchanges the authorization code, resolves the identity, issues the
// session cookie and renders the popup handoff page.
func (h *OAuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusServiceUnavailable, "google login is not configured")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie")
		h.redirectWithError(w, r, "invalid_request", "Session expired. Please try again.")
		return
	}

	stateBytes, err := base64.RawURLEncoding.DecodeString(r.URL.Query().Get("state"))
	if err != nil {
		h.logger.Warn("oauth callback: invalid state encoding")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	var statePayload oauthStatePayload
	if err := json.Unmarshal(stateBytes, &statePayload); err != nil {
		h.logger.Warn("oauth callback: invalid state JSON")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	if subtle.ConstantTimeCompare([]byte(statePayload.State), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		h.redirectWithError(w, r, "invalid_request", "Invalid state. Please try again.")
		return
	}

	// State verified; the single-use cookie goes away.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		h.redirectWithError(w, r, errParam, r.URL.Query().Get("error_description"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "invalid_request", "Missing authorization code.")
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		h.redirectWithError(w, r, "exchange_error", "Failed to complete authentication.")
		return
	}

	ident, token, err := h.sessions.CompleteHandshake(r.Context(), profile, r.UserAgent(), clientIPFromRequest(r))
	if err != nil {
		if errors.Is(err, session.ErrProviderResolutionFailed) {
			h.logger.Error("oauth callback: identity resolution failed", "error", err)
		} else {
			h.logger.Error("oauth callback: session creation failed", "error", err)
		}
		h.redirectWithError(w, r, "internal_error", "Failed to sign you in.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionCookieTTL.Seconds()),
	})

	if h.recorder != nil {
		h.recorder.RecordLogin(string(profile.Provider))
	}
	h.logger.Info("login successful", "identity_id", ident.ID, "email", ident.Email)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := renderHandoff(w, ident, h.frontendOrigin); err != nil {
		h.logger.Error("oauth callback: handoff render failed", "error", err)
	}
}

// Logout handles GET /api/auth/logout
// Destroys the server-side session and clears the cookie.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		token = cookie.Value
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Me handles GET /api/auth/me
// Reports the identity bound to the session cookie.
func (h *OAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	if ident == nil {
		unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, handoffUser{
		ID:     ident.ID,
		Name:   ident.Name,
		Email:  ident.Email,
		Role:   string(ident.Role),
		Avatar: ident.AvatarURL,
	})
}

// redirectWithError sends the popup back to the frontend login route with
// error details.
func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code, message string) {
	target := h.frontendOrigin + "/login?error=" + url.QueryEscape(code)
	if message != "" {
		target += "&message=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
