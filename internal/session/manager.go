package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizdeck/internal/identity"
)

// identityResolver is the slice of the identity service the manager needs.
type identityResolver interface {
	Resolve(ctx context.Context, profile identity.Profile) (*identity.Identity, error)
	Lookup(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
}

// Manager owns the authenticated-session lifecycle: the login handshake,
// token serialization, and logout.
type Manager struct {
	repo       Repository
	identities identityResolver
	ttl        time.Duration
	secret     []byte
	now        func() time.Time
}

// NewManager creates a session Manager. The secret keys the stored token
// digests, so a copied session table is useless without it.
func NewManager(repo Repository, identities identityResolver, ttl time.Duration, secret string) *Manager {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{repo: repo, identities: identities, ttl: ttl, secret: []byte(secret), now: time.Now}
}

// BeginHandshake starts a provider handshake and returns the CSRF state
// nonce the callback must echo. The pending state travels in a short-lived
// cookie rather than the session store.
func (m *Manager) BeginHandshake() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate handshake state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CompleteHandshake resolves the provider profile into an identity and
// binds it to a new authenticated session, returning the identity and the
// session token to hand to the client. A resolver failure leaves no
// session behind; the caller should let the user retry the handshake.
func (m *Manager) CompleteHandshake(ctx context.Context, profile identity.Profile, userAgent, ipAddress string) (*identity.Identity, string, error) {
	ident, err := m.identities.Resolve(ctx, profile)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProviderResolutionFailed, err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	now := m.now()
	sess := Session{
		ID:         uuid.New(),
		IdentityID: ident.ID,
		State:      StatePendingHandshake,
		ExpiresAt:  now.Add(m.ttl),
		CreatedAt:  now,
		UserAgent:  truncateString(userAgent, 512),
		IPAddress:  truncateString(ipAddress, 45),
	}
	if err := sess.Transition(StateAuthenticated); err != nil {
		return nil, "", err
	}

	if err := m.repo.Create(ctx, sess, m.hashToken(token)); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return ident, token, nil
}

// Deserialize turns a session token back into the full identity record.
// The stored session holds only the identity id, so the identity is
// re-fetched on every call. A destroyed or expired session fails closed
// with ErrSessionExpired; a dangling identity reference destroys the
// session and fails with ErrIdentityNotFound.
func (m *Manager) Deserialize(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	sess, err := m.repo.FindByTokenHash(ctx, m.hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionExpired
	}

	if m.now().After(sess.ExpiresAt) {
		_ = m.repo.Delete(ctx, sess.ID)
		return nil, ErrSessionExpired
	}

	ident, err := m.identities.Lookup(ctx, sess.IdentityID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Identity deleted out-of-band; force the session out.
			_ = m.repo.Delete(ctx, sess.ID)
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("fetch session identity: %w", err)
	}

	return ident, nil
}

// Logout destroys the session-store entry for the token. Logging out a
// session that no longer exists is not an error, but a store failure is
// forwarded so callers never report a destruction that did not happen.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sess, err := m.repo.FindByTokenHash(ctx, m.hashToken(token))
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil
	}

	if err := sess.Transition(StateLoggedOut); err != nil {
		return err
	}

	if err := m.repo.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpired removes all expired sessions from the store.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}

// hashToken returns the hex HMAC-SHA256 digest of the token under the
// manager's secret. Only the digest is ever stored.
func (m *Manager) hashToken(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// truncateString truncates a string to the given max length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
