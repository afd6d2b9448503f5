package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside/volleytrack/models"
)

type FeedbackRepository interface {
	Append(ctx context.Context, entry *models.Feedback) error
	List(ctx context.Context) ([]*models.Feedback, error)
}

type postgresFeedbackRepository struct {
	db *sql.DB
}

func NewPostgresFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) Append(ctx context.Context, entry *models.Feedback) error {
	query := `
		INSERT INTO feedback (name, message)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, entry.Name, entry.Message).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (r *postgresFeedbackRepository) List(ctx context.Context) ([]*models.Feedback, error) {
	query := `
		SELECT id, name, message, created_at
		FROM feedback
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Feedback, 0)
	for rows.Next() {
		var e models.Feedback
		if scanErr := rows.Scan(&e.ID, &e.Name, &e.Message, &e.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during feedback iteration: %w", err)
	}
	return entries, nil
}
