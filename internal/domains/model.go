package domains

import (
	"errors"
	"time"
)

// Domain is one card in the study-domain catalog. The slug acts as the
// natural key; frontends address domains by it.
type Domain struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Bg        string    `json:"bg"`
	Programs  []string  `json:"programs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateInput carries a partial domain update; nil fields are untouched.
type UpdateInput struct {
	Title    *string
	Icon     *string
	Color    *string
	Bg       *string
	Programs *[]string
}

// Sentinel errors for the domains service.
var (
	ErrNotFound   = errors.New("domain not found")
	ErrValidation = errors.New("validation failed")
)
