package quizzes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new quiz attempt.
func (r *PostgresRepository) Create(ctx context.Context, attempt Attempt) (Attempt, error) {
	const query = `
		INSERT INTO quiz_attempts (id, email, domain_id, session_id, payload, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.Email,
		attempt.DomainID,
		attempt.SessionID,
		[]byte(attempt.Payload),
		attempt.AttemptedAt,
	)
	if err != nil {
		return Attempt{}, err
	}
	return attempt, nil
}

// ListByDomain returns all attempts for a domain, newest first.
func (r *PostgresRepository) ListByDomain(ctx context.Context, domainID string) ([]Attempt, error) {
	const query = `
		SELECT id, email, domain_id, session_id, payload, attempted_at
		FROM quiz_attempts
		WHERE domain_id = $1
		ORDER BY attempted_at DESC
	`

	var rows []attemptRow
	if err := r.db.SelectContext(ctx, &rows, query, domainID); err != nil {
		return nil, err
	}

	list := make([]Attempt, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toAttempt())
	}
	return list, nil
}

// attemptRow is a database row representation of Attempt.
type attemptRow struct {
	ID          uuid.UUID `db:"id"`
	Email       string    `db:"email"`
	DomainID    string    `db:"domain_id"`
	SessionID   string    `db:"session_id"`
	Payload     []byte    `db:"payload"`
	AttemptedAt time.Time `db:"attempted_at"`
}

func (r *attemptRow) toAttempt() Attempt {
	return Attempt{
		ID:          r.ID,
		Email:       r.Email,
		DomainID:    r.DomainID,
		SessionID:   r.SessionID,
		Payload:     json.RawMessage(r.Payload),
		AttemptedAt: r.AttemptedAt,
	}
}
