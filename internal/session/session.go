package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State tracks where a browser session sits in its lifecycle. LoggedOut is
// terminal; further logins start a fresh session.
type State string

const (
	StateUnauthenticated  State = "unauthenticated"
	StatePendingHandshake State = "pending_handshake"
	StateAuthenticated    State = "authenticated"
	StateLoggedOut        State = "logged_out"
)

var transitions = map[State][]State{
	StateUnauthenticated:  {StatePendingHandshake},
	StatePendingHandshake: {StateAuthenticated},
	StateAuthenticated:    {StateLoggedOut},
	StateLoggedOut:        {},
}

// CanTransition reports whether the state machine allows moving to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is a server-side authenticated browser session. It holds only a
// reference to the identity; deserialization re-fetches the full record.
type Session struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	State      State
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UserAgent  string
	IPAddress  string
}

// Transition advances the session state, rejecting moves the lifecycle
// does not allow.
func (s *Session) Transition(next State) error {
	if !s.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, next)
	}
	s.State = next
	return nil
}

// Sentinel errors for session lifecycle failures.
var (
	ErrInvalidTransition        = errors.New("invalid session transition")
	ErrSessionExpired           = errors.New("session expired")
	ErrIdentityNotFound         = errors.New("session identity not found")
	ErrProviderResolutionFailed = errors.New("provider resolution failed")
)
