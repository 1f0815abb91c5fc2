package presence

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository stores presence records in an in-process map, ideal
// for local development or tests. All writes for an email happen under
// one lock, matching the atomic-upsert contract.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Record
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]Record)}
}

// Upsert creates or refreshes the record for an email.
func (r *InMemoryRepository) Upsert(_ context.Context, email, name string, seenAt time.Time) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.data[email]
	if !ok {
		record = Record{Email: email}
	}
	if name != "" {
		record.Name = name
	}
	record.Online = true
	record.LastSeen = seenAt
	r.data[email] = record
	return record, nil
}

// SetAway flips the record offline.
func (r *InMemoryRepository) SetAway(_ context.Context, email string, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.data[email]
	if !ok {
		return ErrNotFound
	}
	record.Online = false
	record.LastSeen = seenAt
	r.data[email] = record
	return nil
}

// ListOnline returns fresh online records, most recent first.
func (r *InMemoryRepository) ListOnline(_ context.Context, cutoff time.Time) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]Record, 0, len(r.data))
	for _, record := range r.data {
		if record.Online && !record.LastSeen.Before(cutoff) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastSeen.After(records[j].LastSeen)
	})
	return records, nil
}
