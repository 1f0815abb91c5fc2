package presence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL. The upsert
// relies on ON CONFLICT so concurrent heartbeats for one email never
// produce duplicate rows.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates or refreshes the presence row for an email.
func (r *PostgresRepository) Upsert(ctx context.Context, email, name string, seenAt time.Time) (Record, error) {
	const query = `
		INSERT INTO presence (email, name, online, last_seen)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), presence.name),
		    online = TRUE,
		    last_seen = EXCLUDED.last_seen
		RETURNING email, name, online, last_seen
	`

	var row presenceRow
	if err := r.db.GetContext(ctx, &row, query, email, name, seenAt); err != nil {
		return Record{}, err
	}
	return row.toRecord(), nil
}

// SetAway flips the record offline and stamps the time.
func (r *PostgresRepository) SetAway(ctx context.Context, email string, seenAt time.Time) error {
	const query = `UPDATE presence SET online = FALSE, last_seen = $2 WHERE email = $1`

	result, err := r.db.ExecContext(ctx, query, email, seenAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOnline returns fresh online records, most recent first.
func (r *PostgresRepository) ListOnline(ctx context.Context, cutoff time.Time) ([]Record, error) {
	const query = `
		SELECT email, name, online, last_seen
		FROM presence
		WHERE online = TRUE AND last_seen >= $1
		ORDER BY last_seen DESC
	`

	var rows []presenceRow
	if err := r.db.SelectContext(ctx, &rows, query, cutoff); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

// presenceRow is a database row representation of Record.
type presenceRow struct {
	Email    string    `db:"email"`
	Name     string    `db:"name"`
	Online   bool      `db:"online"`
	LastSeen time.Time `db:"last_seen"`
}

func (r *presenceRow) toRecord() Record {
	return Record{
		Email:    r.Email,
		Name:     r.Name,
		Online:   r.Online,
		LastSeen: r.LastSeen,
	}
}
