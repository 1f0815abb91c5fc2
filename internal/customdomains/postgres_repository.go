package customdomains

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL. The question
// set is stored as JSONB.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const customDomainColumns = `id, user_id, name, description, main_topic, user_prompt, is_assignment, question_limit, questions, icon, color, difficulty, progress, created_at, updated_at`

// Create inserts a new custom domain.
func (r *PostgresRepository) Create(ctx context.Context, domain CustomDomain) (CustomDomain, error) {
	const query = `
		INSERT INTO custom_domains (` + customDomainColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		domain.ID,
		domain.UserID,
		domain.Name,
		domain.Description,
		domain.MainTopic,
		domain.UserPrompt,
		domain.IsAssignment,
		domain.QuestionLimit,
		questionsJSON(domain.Questions),
		domain.Icon,
		domain.Color,
		domain.Difficulty,
		domain.Progress,
		domain.CreatedAt,
		domain.UpdatedAt,
	)
	if err != nil {
		return CustomDomain{}, err
	}
	return domain, nil
}

// ListByUser returns the user's custom domains, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]CustomDomain, error) {
	const query = `
		SELECT ` + customDomainColumns + `
		FROM custom_domains
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var rows []customDomainRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	list := make([]CustomDomain, 0, len(rows))
	for _, row := range rows {
		domain, err := row.toCustomDomain()
		if err != nil {
			return nil, err
		}
		list = append(list, domain)
	}
	return list, nil
}

// Get returns a custom domain by id.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (CustomDomain, error) {
	const query = `SELECT ` + customDomainColumns + ` FROM custom_domains WHERE id = $1`

	var row customDomainRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CustomDomain{}, ErrNotFound
		}
		return CustomDomain{}, err
	}
	return row.toCustomDomain()
}

// Update replaces the stored fields of an existing custom domain.
func (r *PostgresRepository) Update(ctx context.Context, domain CustomDomain) (CustomDomain, error) {
	const query = `
		UPDATE custom_domains
		SET name = $2, description = $3, main_topic = $4, user_prompt = $5,
		    is_assignment = $6, question_limit = $7, questions = $8,
		    icon = $9, color = $10, difficulty = $11, progress = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.ID,
		domain.Name,
		domain.Description,
		domain.MainTopic,
		domain.UserPrompt,
		domain.IsAssignment,
		domain.QuestionLimit,
		questionsJSON(domain.Questions),
		domain.Icon,
		domain.Color,
		domain.Difficulty,
		domain.Progress,
		domain.UpdatedAt,
	)
	if err != nil {
		return CustomDomain{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return CustomDomain{}, err
	}
	if affected == 0 {
		return CustomDomain{}, ErrNotFound
	}
	return domain, nil
}

// Delete removes a custom domain by id.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM custom_domains WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
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

// questionsJSON marshals a question set into a JSONB column value.
type questionsJSON []Question

func (q questionsJSON) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Question(q))
}

// customDomainRow is a database row representation of CustomDomain.
type customDomainRow struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	MainTopic     string    `db:"main_topic"`
	UserPrompt    string    `db:"user_prompt"`
	IsAssignment  bool      `db:"is_assignment"`
	QuestionLimit int       `db:"question_limit"`
	Questions     []byte    `db:"questions"`
	Icon          string    `db:"icon"`
	Color         string    `db:"color"`
	Difficulty    int       `db:"difficulty"`
	Progress      int       `db:"progress"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *customDomainRow) toCustomDomain() (CustomDomain, error) {
	var questions []Question
	if len(r.Questions) > 0 {
		if err := json.Unmarshal(r.Questions, &questions); err != nil {
			return CustomDomain{}, fmt.Errorf("decode questions for %s: %w", r.ID, err)
		}
	}

	return CustomDomain{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Description:   r.Description,
		MainTopic:     r.MainTopic,
		UserPrompt:    r.UserPrompt,
		IsAssignment:  r.IsAssignment,
		QuestionLimit: r.QuestionLimit,
		Questions:     questions,
		Icon:          r.Icon,
		Color:         r.Color,
		Difficulty:    r.Difficulty,
		Progress:      r.Progress,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}
