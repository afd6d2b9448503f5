package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside/volleytrack/models"
)

type TrackerLogRepository interface {
	Append(ctx context.Context, entry *models.TrackerLog) error
	List(ctx context.Context, limit int) ([]*models.TrackerLog, error)
}

type postgresTrackerLogRepository struct {
	db *sql.DB
}

func NewPostgresTrackerLogRepository(db *sql.DB) TrackerLogRepository {
	return &postgresTrackerLogRepository{db: db}
}

func (r *postgresTrackerLogRepository) Append(ctx context.Context, entry *models.TrackerLog) error {
	query := `
		INSERT INTO tracker_logs (id, team_id, match_id, action, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.TeamID,
		entry.MatchID,
		entry.Action,
		entry.Detail,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append tracker log: %w", err)
	}
	return nil
}

func (r *postgresTrackerLogRepository) List(ctx context.Context, limit int) ([]*models.TrackerLog, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, team_id, match_id, action, detail, created_at
		FROM tracker_logs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracker logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.TrackerLog, 0)
	for rows.Next() {
		var e models.TrackerLog
		if scanErr := rows.Scan(&e.ID, &e.TeamID, &e.MatchID, &e.Action, &e.Detail, &e.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tracker log row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tracker log iteration: %w", err)
	}
	return entries, nil
}
