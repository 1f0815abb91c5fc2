package presence

import (
	"errors"
	"time"
)

// Record is a best-effort liveness signal keyed by email. It is
// independent of identities: guests heartbeat too, and records are never
// deleted.
type Record struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

// ErrNotFound is returned when no record exists for an email. Callers of
// MarkAway may safely ignore it.
var ErrNotFound = errors.New("presence record not found")

// ErrValidation is returned when a required field is missing.
var ErrValidation = errors.New("validation failed")
