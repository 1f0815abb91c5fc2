package quizzes

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attempt is one recorded quiz run. Email is empty for anonymous attempts.
// Payload carries the client-reported results document verbatim so the
// platform can evolve its scoring shape without a migration.
type Attempt struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email,omitempty"`
	DomainID    string          `json:"domainId"`
	SessionID   string          `json:"sessionId"`
	Payload     json.RawMessage `json:"payload"`
	AttemptedAt time.Time       `json:"attemptedAt"`
}

// RecordInput carries the fields needed to store an attempt.
type RecordInput struct {
	Email     string
	DomainID  string
	SessionID string
	Payload   json.RawMessage
}

// Sentinel errors for the quizzes service.
var (
	ErrNotFound   = errors.New("quiz attempt not found")
	ErrValidation = errors.New("validation failed")
)
