package customdomains

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository in process memory. Useful for
// development and tests where PostgreSQL is not available.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]CustomDomain
}

// NewInMemoryRepository creates a new InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[uuid.UUID]CustomDomain)}
}

// Create inserts a new custom domain.
func (r *InMemoryRepository) Create(_ context.Context, domain CustomDomain) (CustomDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[domain.ID] = cloneCustomDomain(domain)
	return domain, nil
}

// ListByUser returns the user's custom domains, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]CustomDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]CustomDomain, 0)
	for _, domain := range r.data {
		if domain.UserID == userID {
			list = append(list, cloneCustomDomain(domain))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list, nil
}

// Get returns a custom domain by id.
func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (CustomDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	domain, ok := r.data[id]
	if !ok {
		return CustomDomain{}, ErrNotFound
	}
	return cloneCustomDomain(domain), nil
}

// Update replaces the stored fields of an existing custom domain.
func (r *InMemoryRepository) Update(_ context.Context, domain CustomDomain) (CustomDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.data[domain.ID]
	if !ok {
		return CustomDomain{}, ErrNotFound
	}
	domain.CreatedAt = existing.CreatedAt
	r.data[domain.ID] = cloneCustomDomain(domain)
	return domain, nil
}

// Delete removes a custom domain by id.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// cloneCustomDomain copies the question slice so callers cannot alias
// stored state.
func cloneCustomDomain(domain CustomDomain) CustomDomain {
	if domain.Questions != nil {
		questions := make([]Question, len(domain.Questions))
		for i, q := range domain.Questions {
			q.Options = append([]string(nil), q.Options...)
			questions[i] = q
		}
		domain.Questions = questions
	}
	return domain
}
