package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository stores sessions in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[uuid.UUID]Session
	byHash map[string]uuid.UUID
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		data:   make(map[uuid.UUID]Session),
		byHash: make(map[string]uuid.UUID),
	}
}

// Create stores a new session under its token hash.
func (r *InMemoryRepository) Create(_ context.Context, session Session, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[session.ID] = session
	r.byHash[tokenHash] = session.ID
	return nil
}

// FindByTokenHash returns the session stored under the token hash.
func (r *InMemoryRepository) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	session, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// Delete removes a session by id.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, id)
	for hash, sid := range r.byHash {
		if sid == id {
			delete(r.byHash, hash)
			break
		}
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (r *InMemoryRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, session := range r.data {
		if now.After(session.ExpiresAt) {
			delete(r.data, id)
			removed++
		}
	}
	for hash, id := range r.byHash {
		if _, ok := r.data[id]; !ok {
			delete(r.byHash, hash)
		}
	}
	return removed, nil
}
