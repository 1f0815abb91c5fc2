package presence

import (
	"context"
	"time"
)

// Repository defines the interface for presence persistence.
type Repository interface {
	// Upsert atomically creates or refreshes the record for an email.
	// An empty name leaves any stored name untouched.
	Upsert(ctx context.Context, email, name string, seenAt time.Time) (Record, error)
	// SetAway flips the record offline, returning ErrNotFound when the
	// email has never heartbeated.
	SetAway(ctx context.Context, email string, seenAt time.Time) error
	// ListOnline returns records with online=true and lastSeen at or
	// after cutoff, most recent first. Staleness is filtered here, never
	// written back.
	ListOnline(ctx context.Context, cutoff time.Time) ([]Record, error)
}
