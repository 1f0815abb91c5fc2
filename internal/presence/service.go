package presence

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service tracks who is currently online from lossy heartbeat signals.
// There is no background sweeper: staleness is computed lazily whenever
// the online list is read.
type Service struct {
	repo   Repository
	window time.Duration
	now    func() time.Time
}

// NewService creates a presence Service with the given staleness window.
func NewService(repo Repository, window time.Duration) *Service {
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &Service{repo: repo, window: window, now: time.Now}
}

// Heartbeat records that the user behind email is online right now. The
// upsert is atomic per email; concurrent heartbeats may race but any
// winner's timestamp is acceptable.
func (s *Service) Heartbeat(ctx context.Context, email, name string) (Record, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Record{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	record, err := s.repo.Upsert(ctx, email, strings.TrimSpace(name), s.now())
	if err != nil {
		return Record{}, fmt.Errorf("upsert presence: %w", err)
	}
	return record, nil
}

// MarkAway flips the record for email offline. Unknown emails surface
// ErrNotFound, which callers treat as a no-op.
func (s *Service) MarkAway(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	if err := s.repo.SetAway(ctx, email, s.now()); err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("mark away: %w", err)
	}
	return nil
}

// ListOnline returns everyone whose online hint is still trustworthy:
// online=true and a heartbeat within the staleness window. Stale rows are
// filtered out, not mutated.
func (s *Service) ListOnline(ctx context.Context) ([]Record, error) {
	cutoff := s.now().Add(-s.window)
	records, err := s.repo.ListOnline(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list online: %w", err)
	}
	return records, nil
}
