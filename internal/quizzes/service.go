package quizzes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for quiz attempt persistence.
type Repository interface {
	Create(ctx context.Context, attempt Attempt) (Attempt, error)
	ListByDomain(ctx context.Context, domainID string) ([]Attempt, error)
}

// Service provides quiz attempt business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new quizzes Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record stores a completed quiz attempt. The session identifier ties
// multiple attempts from the same quiz run together.
func (s *Service) Record(ctx context.Context, input RecordInput) (Attempt, error) {
	switch {
	case strings.TrimSpace(input.SessionID) == "":
		return Attempt{}, fmt.Errorf("%w: sessionId is required", ErrValidation)
	case len(input.Payload) == 0:
		return Attempt{}, fmt.Errorf("%w: payload is required", ErrValidation)
	case !json.Valid(input.Payload):
		return Attempt{}, fmt.Errorf("%w: payload must be valid JSON", ErrValidation)
	}

	attempt := Attempt{
		ID:          uuid.New(),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		DomainID:    strings.TrimSpace(input.DomainID),
		SessionID:   strings.TrimSpace(input.SessionID),
		Payload:     input.Payload,
		AttemptedAt: s.now(),
	}

	created, err := s.repo.Create(ctx, attempt)
	if err != nil {
		return Attempt{}, fmt.Errorf("record attempt: %w", err)
	}
	return created, nil
}

// ListByDomain returns all attempts for a domain, newest first.
func (s *Service) ListByDomain(ctx context.Context, domainID string) ([]Attempt, error) {
	if strings.TrimSpace(domainID) == "" {
		return nil, fmt.Errorf("%w: domainId is required", ErrValidation)
	}
	list, err := s.repo.ListByDomain(ctx, domainID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return list, nil
}
