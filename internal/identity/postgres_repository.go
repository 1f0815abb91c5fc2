package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const identityColumns = `id, name, email, avatar_url, email_verified, role, created_at, updated_at, last_login_at`

// FindByProvider looks up an identity holding the given provider link.
func (r *PostgresRepository) FindByProvider(ctx context.Context, provider Provider, providerID string) (*Identity, error) {
	const query = `
		SELECT i.id, i.name, i.email, i.avatar_url, i.email_verified, i.role, i.created_at, i.updated_at, i.last_login_at
		FROM identities i
		JOIN identity_providers p ON p.identity_id = i.id
		WHERE p.provider = $1 AND p.provider_id = $2
	`

	var row identityRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.withLinks(ctx, row.toIdentity())
}

// FindByEmail looks up an identity by its unique email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	const query = `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`

	var row identityRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.withLinks(ctx, row.toIdentity())
}

// FindByID looks up an identity by its durable id.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	const query = `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	var row identityRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.withLinks(ctx, row.toIdentity())
}

// Create inserts a new identity together with its provider links.
// Uniqueness violations are mapped to ErrEmailConflict / ErrProviderConflict.
func (r *PostgresRepository) Create(ctx context.Context, ident Identity) (Identity, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Identity{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const insertIdentity = `
		INSERT INTO identities (id, name, email, avatar_url, email_verified, role, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, insertIdentity,
		ident.ID,
		ident.Name,
		nullableEmail(ident.Email),
		ident.AvatarURL,
		ident.EmailVerified,
		ident.Role,
		ident.CreatedAt,
		ident.UpdatedAt,
		ident.LastLoginAt,
	)
	if err != nil {
		return Identity{}, mapUniqueViolation(err)
	}

	const insertLink = `
		INSERT INTO identity_providers (provider, provider_id, identity_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for _, link := range ident.Providers {
		if _, err := tx.ExecContext(ctx, insertLink, link.Provider, link.ProviderID, ident.ID, ident.CreatedAt); err != nil {
			return Identity{}, mapUniqueViolation(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Identity{}, err
	}
	return ident, nil
}

// AddProviderLink attaches a provider link to an existing identity.
func (r *PostgresRepository) AddProviderLink(ctx context.Context, id uuid.UUID, link ProviderLink) error {
	const query = `
		INSERT INTO identity_providers (provider, provider_id, identity_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, link.Provider, link.ProviderID, id, time.Now()); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// RecordLogin refreshes display metadata and bumps the login timestamp.
// Name and avatar only change when the profile supplied them, and
// email_verified never flips back to false.
func (r *PostgresRepository) RecordLogin(ctx context.Context, id uuid.UUID, name, avatarURL string, emailVerified bool, at time.Time) error {
	const query = `
		UPDATE identities
		SET name = COALESCE(NULLIF($2, ''), name),
		    avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
		    email_verified = email_verified OR $4,
		    last_login_at = $5,
		    updated_at = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, name, avatarURL, emailVerified, at)
	return err
}

func (r *PostgresRepository) withLinks(ctx context.Context, ident *Identity) (*Identity, error) {
	const query = `
		SELECT provider, provider_id
		FROM identity_providers
		WHERE identity_id = $1
		ORDER BY created_at
	`

	var rows []providerRow
	if err := r.db.SelectContext(ctx, &rows, query, ident.ID); err != nil {
		return nil, err
	}

	ident.Providers = make([]ProviderLink, 0, len(rows))
	for _, row := range rows {
		ident.Providers = append(ident.Providers, ProviderLink{Provider: Provider(row.Provider), ProviderID: row.ProviderID})
	}
	return ident, nil
}

func nullableEmail(email string) sql.NullString {
	return sql.NullString{String: email, Valid: email != ""}
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "identities_email_key":
			return ErrEmailConflict
		case "identity_providers_pkey":
			return ErrProviderConflict
		}
	}
	return err
}

// identityRow is a database row representation of Identity.
type identityRow struct {
	ID            uuid.UUID      `db:"id"`
	Name          string         `db:"name"`
	Email         sql.NullString `db:"email"`
	AvatarURL     string         `db:"avatar_url"`
	EmailVerified bool           `db:"email_verified"`
	Role          string         `db:"role"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	LastLoginAt   time.Time      `db:"last_login_at"`
}

func (r *identityRow) toIdentity() *Identity {
	return &Identity{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email.String,
		AvatarURL:     r.AvatarURL,
		EmailVerified: r.EmailVerified,
		Role:          Role(r.Role),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastLoginAt:   r.LastLoginAt,
	}
}

type providerRow struct {
	Provider   string `db:"provider"`
	ProviderID string `db:"provider_id"`
}
