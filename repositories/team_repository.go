package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/volleytrack/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
	ErrTeamCredsNotSet  = errors.New("team has no tracker password set")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error

	SetPlayers(ctx context.Context, teamID int, playerIDs []int) error
	ListPlayers(ctx context.Context, teamID int) ([]models.Player, error)

	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error

	SetPasswordHash(ctx context.Context, teamID int, hash string) error
	GetPasswordHash(ctx context.Context, teamID int) (string, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, color)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, team.Name, team.Color).Scan(&team.ID, &team.CreatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, color, logo_key, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Color,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}

	team.PlayerIDs, err = r.listPlayerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, color, logo_key, created_at
		FROM teams
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Color, &t.LogoKey, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}

	for _, t := range teams {
		if t.PlayerIDs, err = r.listPlayerIDs(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, color = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, team.Name, team.Color, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// SetPlayers replaces the team roster with the given ordered list.
// Duplicate membership across teams is allowed by design.
func (r *postgresTeamRepository) SetPlayers(ctx context.Context, teamID int, playerIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM team_players WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to clear roster for team %d: %w", teamID, err)
	}

	insert := `INSERT INTO team_players (team_id, player_id, position) VALUES ($1, $2, $3)`
	for i, playerID := range playerIDs {
		if _, err = tx.ExecContext(ctx, insert, teamID, playerID, i); err != nil {
			return r.handleTeamError(err)
		}
	}

	return tx.Commit()
}

func (r *postgresTeamRepository) ListPlayers(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT p.id, p.name, p.jersey_number, p.jersey_name, p.created_at
		FROM team_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.team_id = $1
		ORDER BY tp.position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for team %d: %w", teamID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name, &p.JerseyNumber, &p.JerseyName, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update logo key for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetPasswordHash(ctx context.Context, teamID int, hash string) error {
	query := `
		INSERT INTO team_credentials (team_id, password_hash, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (team_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`

	_, err := r.db.ExecContext(ctx, query, teamID, hash)
	if err != nil {
		return r.handleTeamError(err)
	}
	return nil
}

func (r *postgresTeamRepository) GetPasswordHash(ctx context.Context, teamID int) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM team_credentials WHERE team_id = $1`, teamID,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTeamCredsNotSet
		}
		return "", fmt.Errorf("failed to read credentials for team %d: %w", teamID, err)
	}
	return hash, nil
}

func (r *postgresTeamRepository) listPlayerIDs(ctx context.Context, teamID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM team_players WHERE team_id = $1 ORDER BY position ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster ids for team %d: %w", teamID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster id: %w", scanErr)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "teams_name_key":
			return ErrTeamNameConflict
		case "team_players_team_id_fkey", "team_credentials_team_id_fkey":
			return ErrTeamNotFound
		case "team_players_player_id_fkey":
			return ErrPlayerNotFound
		}
	}
	return err
}
