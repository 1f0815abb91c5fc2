package customdomains

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Question is one generated quiz question attached to a custom domain.
type Question struct {
	Text         string   `json:"questionText"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// CustomDomain is a user-authored study domain, optionally published as a
// teacher assignment with a fixed question set.
type CustomDomain struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	MainTopic     string     `json:"mainTopic"`
	UserPrompt    string     `json:"userPrompt"`
	IsAssignment  bool       `json:"isAssignment"`
	QuestionLimit int        `json:"questionLimit"`
	Questions     []Question `json:"questions"`
	Icon          string     `json:"icon"`
	Color         string     `json:"color"`
	Difficulty    int        `json:"difficulty"`
	Progress      int        `json:"progress"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Defaults applied when a create request leaves the fields empty.
const (
	DefaultQuestionLimit = 15
	DefaultDifficulty    = 3
	DefaultIcon          = "Sparkles"
	DefaultColor         = "hsl(48, 96%, 53%)"
)

// CreateInput carries the fields a creator may supply.
type CreateInput struct {
	UserID        uuid.UUID
	Name          string
	Description   string
	MainTopic     string
	UserPrompt    string
	IsAssignment  bool
	QuestionLimit int
	Questions     []Question
	Icon          string
	Color         string
	Difficulty    int
}

// UpdateInput carries a partial update; nil fields are untouched.
type UpdateInput struct {
	Name          *string
	Description   *string
	MainTopic     *string
	UserPrompt    *string
	IsAssignment  *bool
	QuestionLimit *int
	Questions     *[]Question
	Icon          *string
	Color         *string
	Difficulty    *int
	Progress      *int
}

// Sentinel errors for the custom domains service.
var (
	ErrNotFound   = errors.New("custom domain not found")
	ErrValidation = errors.New("validation failed")
)
