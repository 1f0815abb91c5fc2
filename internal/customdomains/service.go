package customdomains

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for custom domain persistence.
type Repository interface {
	Create(ctx context.Context, domain CustomDomain) (CustomDomain, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CustomDomain, error)
	Get(ctx context.Context, id uuid.UUID) (CustomDomain, error)
	Update(ctx context.Context, domain CustomDomain) (CustomDomain, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service provides custom domain business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new custom domains Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new custom domain, filling in display defaults.
func (s *Service) Create(ctx context.Context, input CreateInput) (CustomDomain, error) {
	switch {
	case input.UserID == uuid.Nil:
		return CustomDomain{}, fmt.Errorf("%w: userId is required", ErrValidation)
	case strings.TrimSpace(input.Name) == "":
		return CustomDomain{}, fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(input.UserPrompt) == "":
		return CustomDomain{}, fmt.Errorf("%w: userPrompt is required", ErrValidation)
	}
	if input.Difficulty != 0 && (input.Difficulty < 1 || input.Difficulty > 5) {
		return CustomDomain{}, fmt.Errorf("%w: difficulty must be between 1 and 5", ErrValidation)
	}

	now := s.now()
	domain := CustomDomain{
		ID:            uuid.New(),
		UserID:        input.UserID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		MainTopic:     input.MainTopic,
		UserPrompt:    strings.TrimSpace(input.UserPrompt),
		IsAssignment:  input.IsAssignment,
		QuestionLimit: input.QuestionLimit,
		Questions:     input.Questions,
		Icon:          input.Icon,
		Color:         input.Color,
		Difficulty:    input.Difficulty,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if domain.QuestionLimit <= 0 {
		domain.QuestionLimit = DefaultQuestionLimit
	}
	if domain.Difficulty == 0 {
		domain.Difficulty = DefaultDifficulty
	}
	if domain.Icon == "" {
		domain.Icon = DefaultIcon
	}
	if domain.Color == "" {
		domain.Color = DefaultColor
	}

	created, err := s.repo.Create(ctx, domain)
	if err != nil {
		return CustomDomain{}, fmt.Errorf("create custom domain: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's custom domains, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]CustomDomain, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list custom domains: %w", err)
	}
	return list, nil
}

// Get returns a single custom domain.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (CustomDomain, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an existing custom domain.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (CustomDomain, error) {
	domain, err := s.repo.Get(ctx, id)
	if err != nil {
		return CustomDomain{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return CustomDomain{}, fmt.Errorf("%w: name is required", ErrValidation)
		}
		domain.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		domain.Description = *input.Description
	}
	if input.MainTopic != nil {
		domain.MainTopic = *input.MainTopic
	}
	if input.UserPrompt != nil {
		if strings.TrimSpace(*input.UserPrompt) == "" {
			return CustomDomain{}, fmt.Errorf("%w: userPrompt is required", ErrValidation)
		}
		domain.UserPrompt = strings.TrimSpace(*input.UserPrompt)
	}
	if input.IsAssignment != nil {
		domain.IsAssignment = *input.IsAssignment
	}
	if input.QuestionLimit != nil {
		if *input.QuestionLimit <= 0 {
			return CustomDomain{}, fmt.Errorf("%w: questionLimit must be positive", ErrValidation)
		}
		domain.QuestionLimit = *input.QuestionLimit
	}
	if input.Questions != nil {
		domain.Questions = *input.Questions
	}
	if input.Icon != nil {
		domain.Icon = *input.Icon
	}
	if input.Color != nil {
		domain.Color = *input.Color
	}
	if input.Difficulty != nil {
		if *input.Difficulty < 1 || *input.Difficulty > 5 {
			return CustomDomain{}, fmt.Errorf("%w: difficulty must be between 1 and 5", ErrValidation)
		}
		domain.Difficulty = *input.Difficulty
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return CustomDomain{}, fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
		}
		domain.Progress = *input.Progress
	}
	domain.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, domain)
	if err != nil {
		return CustomDomain{}, err
	}
	return updated, nil
}

// Delete removes a custom domain.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
