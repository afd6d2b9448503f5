package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/volleytrack/models"
)

var ErrStatLogNotFound = errors.New("stat log entry not found")

type StatLogRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.StatLog) error

	// Latest returns the newest entry for a match, ordered by creation
	// time descending with id as tiebreak. ErrStatLogNotFound when the
	// match has no entries.
	Latest(ctx context.Context, matchID int) (*models.StatLog, error)

	GetByID(ctx context.Context, id string) (*models.StatLog, error)
	ListByMatch(ctx context.Context, matchID int) ([]*models.StatLog, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresStatLogRepository struct {
	db *sql.DB
}

func NewPostgresStatLogRepository(db *sql.DB) StatLogRepository {
	return &postgresStatLogRepository{db: db}
}

const statLogColumns = `
	id, match_id, player_id, player_name, team_id, team_name,
	stat_name, value, category, set_number, created_at`

func (r *postgresStatLogRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.StatLog) error {
	query := `
		INSERT INTO stat_logs
			(id, match_id, player_id, player_name, team_id, team_name, stat_name, value, category, set_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		entry.ID,
		entry.MatchID,
		entry.PlayerID,
		entry.PlayerName,
		entry.TeamID,
		entry.TeamName,
		entry.StatName,
		entry.Value,
		entry.Category,
		entry.Set,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append stat log entry for match %d: %w", entry.MatchID, err)
	}
	return nil
}

func (r *postgresStatLogRepository) Latest(ctx context.Context, matchID int) (*models.StatLog, error) {
	query := `SELECT ` + statLogColumns + `
		FROM stat_logs
		WHERE match_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	entry := &models.StatLog{}
	err := scanStatLog(r.db.QueryRowContext(ctx, query, matchID), entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatLogNotFound
		}
		return nil, fmt.Errorf("failed to scan latest stat log for match %d: %w", matchID, err)
	}
	return entry, nil
}

func (r *postgresStatLogRepository) GetByID(ctx context.Context, id string) (*models.StatLog, error) {
	query := `SELECT ` + statLogColumns + ` FROM stat_logs WHERE id = $1`

	entry := &models.StatLog{}
	err := scanStatLog(r.db.QueryRowContext(ctx, query, id), entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatLogNotFound
		}
		return nil, fmt.Errorf("failed to scan stat log %s: %w", id, err)
	}
	return entry, nil
}

func (r *postgresStatLogRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.StatLog, error) {
	query := `SELECT ` + statLogColumns + `
		FROM stat_logs
		WHERE match_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat logs for match %d: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]*models.StatLog, 0)
	for rows.Next() {
		var e models.StatLog
		if scanErr := scanStatLog(rows, &e); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stat log row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stat log iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresStatLogRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM stat_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stat log %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrStatLogNotFound)
}

func scanStatLog(row rowScanner, e *models.StatLog) error {
	return row.Scan(
		&e.ID, &e.MatchID, &e.PlayerID, &e.PlayerName, &e.TeamID, &e.TeamName,
		&e.StatName, &e.Value, &e.Category, &e.Set, &e.CreatedAt,
	)
}
