package domains

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository stores domains in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Domain
}

// NewInMemoryRepository constructs a repository seeded with optional initial domains.
func NewInMemoryRepository(initial []Domain) *InMemoryRepository {
	data := make(map[string]Domain, len(initial))
	for _, domain := range initial {
		data[domain.ID] = domain
	}
	return &InMemoryRepository{data: data}
}

// Upsert inserts or replaces the domain stored under its slug.
func (r *InMemoryRepository) Upsert(_ context.Context, domain Domain) (Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.data[domain.ID]; ok {
		domain.CreatedAt = existing.CreatedAt
	}
	r.data[domain.ID] = domain
	return domain, nil
}

// List returns all domains, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Domain, 0, len(r.data))
	for _, domain := range r.data {
		list = append(list, domain)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Get returns a domain by slug.
func (r *InMemoryRepository) Get(_ context.Context, id string) (Domain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	domain, ok := r.data[id]
	if !ok {
		return Domain{}, ErrNotFound
	}
	return domain, nil
}

// Update replaces an existing domain.
func (r *InMemoryRepository) Update(_ context.Context, domain Domain) (Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.data[domain.ID]
	if !ok {
		return Domain{}, ErrNotFound
	}
	domain.CreatedAt = existing.CreatedAt
	r.data[domain.ID] = domain
	return domain, nil
}

// Delete removes a domain by slug.
func (r *InMemoryRepository) Delete(_ context.Context, id string) (Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	domain, ok := r.data[id]
	if !ok {
		return Domain{}, ErrNotFound
	}
	delete(r.data, id)
	return domain, nil
}
