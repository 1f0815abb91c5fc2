package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a federated login provider.
type Provider string

// Supported providers. Local is reserved for password accounts created
// outside the federated flow.
const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
	ProviderLocal  Provider = "local"
)

// Role controls what an identity may do. The resolver never changes it.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// ProviderLink asserts that a third-party account maps to an identity.
// At most one link exists per (provider, providerID) pair system-wide.
type ProviderLink struct {
	Provider   Provider
	ProviderID string
}

// Identity is the durable, canonical account record for a person across
// one or more providers.
type Identity struct {
	ID            uuid.UUID
	Name          string
	Email         string // lowercase; empty means no email on record
	AvatarURL     string
	Providers     []ProviderLink
	EmailVerified bool
	Role          Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   time.Time
}

// HasProvider reports whether the identity already carries the given link.
func (i *Identity) HasProvider(provider Provider, providerID string) bool {
	for _, link := range i.Providers {
		if link.Provider == provider && link.ProviderID == providerID {
			return true
		}
	}
	return false
}

// Profile is the fixed shape a federated login yields at the resolver
// boundary. Every field except Provider and ProviderID is optional; an
// empty string means the provider did not supply the value.
type Profile struct {
	Provider      Provider
	ProviderID    string
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}

// Sentinel errors shared by the repositories and the resolver.
var (
	ErrNotFound         = errors.New("identity not found")
	ErrValidation       = errors.New("validation failed")
	ErrEmailConflict    = errors.New("email already registered")
	ErrProviderConflict = errors.New("provider link already registered")
)
