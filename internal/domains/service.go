package domains

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for domain persistence.
type Repository interface {
	Upsert(ctx context.Context, domain Domain) (Domain, error)
	List(ctx context.Context) ([]Domain, error)
	Get(ctx context.Context, id string) (Domain, error)
	Update(ctx context.Context, domain Domain) (Domain, error)
	Delete(ctx context.Context, id string) (Domain, error)
}

// Service provides domain catalog business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new domains Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Upsert creates a domain or replaces the one already stored under its
// slug. All fields are required.
func (s *Service) Upsert(ctx context.Context, domain Domain) (Domain, error) {
	if err := validate(domain); err != nil {
		return Domain{}, err
	}

	domain.ID = strings.TrimSpace(domain.ID)
	domain.Title = strings.TrimSpace(domain.Title)
	domain.UpdatedAt = s.now()
	if domain.CreatedAt.IsZero() {
		domain.CreatedAt = domain.UpdatedAt
	}

	stored, err := s.repo.Upsert(ctx, domain)
	if err != nil {
		return Domain{}, fmt.Errorf("upsert domain: %w", err)
	}
	return stored, nil
}

// UpsertMany bulk-upserts a batch of domains; validation runs over the
// whole batch before any write happens.
func (s *Service) UpsertMany(ctx context.Context, batch []Domain) ([]Domain, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: expected at least one domain", ErrValidation)
	}
	for i, domain := range batch {
		if err := validate(domain); err != nil {
			return nil, fmt.Errorf("domain %d: %w", i, err)
		}
	}

	stored := make([]Domain, 0, len(batch))
	for _, domain := range batch {
		result, err := s.Upsert(ctx, domain)
		if err != nil {
			return nil, err
		}
		stored = append(stored, result)
	}
	return stored, nil
}

// List returns all domains, newest first.
func (s *Service) List(ctx context.Context) ([]Domain, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return list, nil
}

// Get returns a single domain by slug.
func (s *Service) Get(ctx context.Context, id string) (Domain, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an existing domain.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Domain, error) {
	domain, err := s.repo.Get(ctx, id)
	if err != nil {
		return Domain{}, err
	}

	if input.Title != nil {
		domain.Title = strings.TrimSpace(*input.Title)
	}
	if input.Icon != nil {
		domain.Icon = *input.Icon
	}
	if input.Color != nil {
		domain.Color = *input.Color
	}
	if input.Bg != nil {
		domain.Bg = *input.Bg
	}
	if input.Programs != nil {
		domain.Programs = *input.Programs
	}
	if err := validate(domain); err != nil {
		return Domain{}, err
	}
	domain.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, domain)
	if err != nil {
		return Domain{}, err
	}
	return updated, nil
}

// Delete removes a domain and returns the removed record.
func (s *Service) Delete(ctx context.Context, id string) (Domain, error) {
	return s.repo.Delete(ctx, id)
}

func validate(domain Domain) error {
	switch {
	case strings.TrimSpace(domain.ID) == "":
		return fmt.Errorf("%w: id is required", ErrValidation)
	case strings.TrimSpace(domain.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case domain.Icon == "":
		return fmt.Errorf("%w: icon is required", ErrValidation)
	case domain.Color == "":
		return fmt.Errorf("%w: color is required", ErrValidation)
	case domain.Bg == "":
		return fmt.Errorf("%w: bg is required", ErrValidation)
	case len(domain.Programs) == 0:
		return fmt.Errorf("%w: programs is required", ErrValidation)
	}
	return nil
}
