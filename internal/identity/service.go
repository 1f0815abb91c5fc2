package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// createRetries bounds the lookup-create loop in Resolve. Each retry only
// happens when another request won a uniqueness race, so the loop settles
// almost immediately in practice.
const createRetries = 3

// Service turns federated login profiles into canonical identities.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new identity Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Resolve finds or creates the identity behind a federated login profile.
//
// Match order: provider link first, then email. An email match from a
// different provider gains a new provider link rather than a second
// identity. A profile without an email can only ever match by provider
// link, so two email-less strangers are never merged.
//
// Creation races for the same new email (or provider link) are arbitrated
// by the store's uniqueness constraints: the loser falls back to the read
// path and links against the winner's row instead of erroring.
func (s *Service) Resolve(ctx context.Context, profile Profile) (*Identity, error) {
	if profile.Provider == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrValidation)
	}
	if profile.ProviderID == "" {
		return nil, fmt.Errorf("%w: providerId is required", ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	link := ProviderLink{Provider: profile.Provider, ProviderID: profile.ProviderID}

	for attempt := 0; attempt < createRetries; attempt++ {
		ident, err := s.repo.FindByProvider(ctx, profile.Provider, profile.ProviderID)
		if err != nil {
			return nil, fmt.Errorf("find identity by provider: %w", err)
		}

		if ident == nil && email != "" {
			ident, err = s.repo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("find identity by email: %w", err)
			}
			if ident != nil {
				if err := s.repo.AddProviderLink(ctx, ident.ID, link); err != nil {
					if errors.Is(err, ErrProviderConflict) {
						// Another request attached this link first; re-read.
						continue
					}
					return nil, fmt.Errorf("add provider link: %w", err)
				}
				ident.Providers = append(ident.Providers, link)
			}
		}

		if ident != nil {
			return s.recordLogin(ctx, ident, profile)
		}

		now := s.now()
		created, err := s.repo.Create(ctx, Identity{
			ID:            uuid.New(),
			Name:          profile.Name,
			Email:         email,
			AvatarURL:     profile.AvatarURL,
			Providers:     []ProviderLink{link},
			EmailVerified: profile.EmailVerified,
			Role:          RoleUser,
			CreatedAt:     now,
			UpdatedAt:     now,
			LastLoginAt:   now,
		})
		if err != nil {
			if errors.Is(err, ErrEmailConflict) || errors.Is(err, ErrProviderConflict) {
				// Lost a create race; the winner's row is now visible to
				// the read path.
				continue
			}
			return nil, fmt.Errorf("create identity: %w", err)
		}
		return &created, nil
	}

	return nil, fmt.Errorf("resolve identity: contention persisted after %d attempts", createRetries)
}

// Lookup re-fetches an identity by its durable id.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Identity, error) {
	ident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if ident == nil {
		return nil, ErrNotFound
	}
	return ident, nil
}

func (s *Service) recordLogin(ctx context.Context, ident *Identity, profile Profile) (*Identity, error) {
	now := s.now()
	if err := s.repo.RecordLogin(ctx, ident.ID, profile.Name, profile.AvatarURL, profile.EmailVerified, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	if profile.Name != "" {
		ident.Name = profile.Name
	}
	if profile.AvatarURL != "" {
		ident.AvatarURL = profile.AvatarURL
	}
	if profile.EmailVerified {
		ident.EmailVerified = true
	}
	ident.LastLoginAt = now
	ident.UpdatedAt = now
	return ident, nil
}
