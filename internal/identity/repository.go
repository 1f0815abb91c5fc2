package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for identity persistence.
//
// Find methods return (nil, nil) when no identity matches. Create and
// AddProviderLink surface uniqueness violations as ErrEmailConflict or
// ErrProviderConflict so the resolver can recover from create races.
type Repository interface {
	FindByProvider(ctx context.Context, provider Provider, providerID string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	Create(ctx context.Context, ident Identity) (Identity, error)
	AddProviderLink(ctx context.Context, id uuid.UUID, link ProviderLink) error
	RecordLogin(ctx context.Context, id uuid.UUID, name, avatarURL string, emailVerified bool, at time.Time) error
}
