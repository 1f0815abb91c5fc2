package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository stores identities in an in-process map, ideal for
// local development or tests. It enforces the same uniqueness rules as
// the SQL schema: email and (provider, providerID) are unique.
type InMemoryRepository struct {
	mu      sync.RWMutex
	data    map[uuid.UUID]Identity
	byEmail map[string]uuid.UUID
	byLink  map[ProviderLink]uuid.UUID
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		data:    make(map[uuid.UUID]Identity),
		byEmail: make(map[string]uuid.UUID),
		byLink:  make(map[ProviderLink]uuid.UUID),
	}
}

// FindByProvider returns the identity holding the given provider link.
func (r *InMemoryRepository) FindByProvider(_ context.Context, provider Provider, providerID string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byLink[ProviderLink{Provider: provider, ProviderID: providerID}]
	if !ok {
		return nil, nil
	}
	return r.snapshot(id), nil
}

// FindByEmail returns the identity registered under the email.
func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return r.snapshot(id), nil
}

// FindByID returns the identity with the given id.
func (r *InMemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.data[id]; !ok {
		return nil, nil
	}
	return r.snapshot(id), nil
}

// Create stores a new identity, enforcing email and provider uniqueness.
func (r *InMemoryRepository) Create(_ context.Context, ident Identity) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ident.Email != "" {
		if _, exists := r.byEmail[ident.Email]; exists {
			return Identity{}, ErrEmailConflict
		}
	}
	for _, link := range ident.Providers {
		if _, exists := r.byLink[link]; exists {
			return Identity{}, ErrProviderConflict
		}
	}

	r.data[ident.ID] = ident
	if ident.Email != "" {
		r.byEmail[ident.Email] = ident.ID
	}
	for _, link := range ident.Providers {
		r.byLink[link] = ident.ID
	}
	return ident, nil
}

// AddProviderLink attaches a provider link to an existing identity.
func (r *InMemoryRepository) AddProviderLink(_ context.Context, id uuid.UUID, link ProviderLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if _, exists := r.byLink[link]; exists {
		return ErrProviderConflict
	}

	ident.Providers = append(append([]ProviderLink(nil), ident.Providers...), link)
	r.data[id] = ident
	r.byLink[link] = id
	return nil
}

// RecordLogin refreshes display metadata and bumps the login timestamp.
func (r *InMemoryRepository) RecordLogin(_ context.Context, id uuid.UUID, name, avatarURL string, emailVerified bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}

	if name != "" {
		ident.Name = name
	}
	if avatarURL != "" {
		ident.AvatarURL = avatarURL
	}
	if emailVerified {
		ident.EmailVerified = true
	}
	ident.LastLoginAt = at
	ident.UpdatedAt = at
	r.data[id] = ident
	return nil
}

// snapshot copies an identity so callers never alias internal state.
// Callers must hold at least the read lock.
func (r *InMemoryRepository) snapshot(id uuid.UUID) *Identity {
	ident := r.data[id]
	ident.Providers = append([]ProviderLink(nil), ident.Providers...)
	return &ident
}
