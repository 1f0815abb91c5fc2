package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for session persistence. Only the
// sha256 hash of the session token is ever stored.
type Repository interface {
	Create(ctx context.Context, session Session, tokenHash string) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
