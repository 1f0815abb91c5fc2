package domains

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

// Upsert inserts the domain or replaces the row stored under its slug.
func (r *PostgresRepository) Upsert(ctx context.Context, domain Domain) (Domain, error) {
	const query = `
		INSERT INTO domains (id, title, icon, color, bg, programs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    icon = EXCLUDED.icon,
		    color = EXCLUDED.color,
		    bg = EXCLUDED.bg,
		    programs = EXCLUDED.programs,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, title, icon, color, bg, programs, created_at, updated_at
	`

	var row domainRow
	err := r.db.GetContext(ctx, &row, query,
		domain.ID,
		domain.Title,
		domain.Icon,
		domain.Color,
		domain.Bg,
		pq.Array(domain.Programs),
		domain.CreatedAt,
		domain.UpdatedAt,
	)
	if err != nil {
		return Domain{}, err
	}
	return row.toDomain(), nil
}

// List returns all domains, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Domain, error) {
	const query = `
		SELECT id, title, icon, color, bg, programs, created_at, updated_at
		FROM domains
		ORDER BY created_at DESC
	`

	var rows []domainRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	list := make([]Domain, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toDomain())
	}
	return list, nil
}

// Get returns a domain by slug.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Domain, error) {
	const query = `
		SELECT id, title, icon, color, bg, programs, created_at, updated_at
		FROM domains
		WHERE id = $1
	`

	var row domainRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Domain{}, ErrNotFound
		}
		return Domain{}, err
	}
	return row.toDomain(), nil
}

// Update replaces the stored fields of an existing domain.
func (r *PostgresRepository) Update(ctx context.Context, domain Domain) (Domain, error) {
	const query = `
		UPDATE domains
		SET title = $2, icon = $3, color = $4, bg = $5, programs = $6, updated_at = $7
		WHERE id = $1
		RETURNING id, title, icon, color, bg, programs, created_at, updated_at
	`

	var row domainRow
	err := r.db.GetContext(ctx, &row, query,
		domain.ID,
		domain.Title,
		domain.Icon,
		domain.Color,
		domain.Bg,
		pq.Array(domain.Programs),
		domain.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Domain{}, ErrNotFound
		}
		return Domain{}, err
	}
	return row.toDomain(), nil
}

// Delete removes a domain and returns the removed record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (Domain, error) {
	const query = `
		DELETE FROM domains
		WHERE id = $1
		RETURNING id, title, icon, color, bg, programs, created_at, updated_at
	`

	var row domainRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Domain{}, ErrNotFound
		}
		return Domain{}, err
	}
	return row.toDomain(), nil
}

// domainRow is a database row representation of Domain.
type domainRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Icon      string         `db:"icon"`
	Color     string         `db:"color"`
	Bg        string         `db:"bg"`
	Programs  pq.StringArray `db:"programs"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *domainRow) toDomain() Domain {
	return Domain{
		ID:        r.ID,
		Title:     r.Title,
		Icon:      r.Icon,
		Color:     r.Color,
		Bg:        r.Bg,
		Programs:  []string(r.Programs),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
