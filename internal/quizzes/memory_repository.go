package quizzes

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository in process memory.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]Attempt
}

// NewInMemoryRepository creates a new InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[uuid.UUID]Attempt)}
}

// Create inserts a new quiz attempt.
func (r *InMemoryRepository) Create(_ context.Context, attempt Attempt) (Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt.Payload = append([]byte(nil), attempt.Payload...)
	r.data[attempt.ID] = attempt
	return attempt, nil
}

// ListByDomain returns all attempts for a domain, newest first.
func (r *InMemoryRepository) ListByDomain(_ context.Context, domainID string) ([]Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Attempt, 0)
	for _, attempt := range r.data {
		if attempt.DomainID == domainID {
			attempt.Payload = append([]byte(nil), attempt.Payload...)
			list = append(list, attempt)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AttemptedAt.Equal(list[j].AttemptedAt) {
			return list[i].AttemptedAt.After(list[j].AttemptedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list, nil
}
