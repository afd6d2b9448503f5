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
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchSetNotFound = errors.New("match set not found")
	ErrMatchTeamInvalid = errors.New("match references an unknown team")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, status *models.MatchStatus) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error

	// Score mutations are atomic in-database increments so concurrent
	// trackers cannot lose updates. They take an SQLExecutor so services
	// can run them inside a transaction together with the stat log.
	AddSetScore(ctx context.Context, exec SQLExecutor, matchID, setNumber, deltaA, deltaB int) error
	AddMirrorScore(ctx context.Context, exec SQLExecutor, matchID, deltaA, deltaB int) error

	GetSets(ctx context.Context, matchID int) ([]models.SetScore, error)
	CompleteSet(ctx context.Context, exec SQLExecutor, matchID, setNumber int) error
	SetCurrentSet(ctx context.Context, exec SQLExecutor, matchID, setNumber, scoreA, scoreB int) error
	Finalize(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match create transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO matches (court_number, team_a_id, team_b_id, tracker_team_id, start_time, status, current_set)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		match.CourtNumber,
		match.TeamAID,
		match.TeamBID,
		match.TrackerTeamID,
		match.StartTime,
		models.MatchStatusScheduled,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return r.handleMatchError(err)
	}

	// All three set rows exist up front so score updates are plain
	// increments rather than upserts.
	for n := 1; n <= 3; n++ {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO match_sets (match_id, set_number) VALUES ($1, $2)`, match.ID, n); err != nil {
			return fmt.Errorf("failed to insert set %d for match %d: %w", n, match.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match create: %w", err)
	}

	match.Status = models.MatchStatusScheduled
	match.CurrentSet = 1
	match.Sets = []models.SetScore{{Number: 1}, {Number: 2}, {Number: 3}}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, court_number, team_a_id, team_b_id, tracker_team_id, start_time,
		       status, current_set, score_a, score_b, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.CourtNumber,
		&match.TeamAID,
		&match.TeamBID,
		&match.TrackerTeamID,
		&match.StartTime,
		&match.Status,
		&match.CurrentSet,
		&match.ScoreA,
		&match.ScoreB,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}

	match.Sets, err = r.GetSets(ctx, id)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, status *models.MatchStatus) ([]*models.Match, error) {
	query := `
		SELECT id, court_number, team_a_id, team_b_id, tracker_team_id, start_time,
		       status, current_set, score_a, score_b, created_at
		FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.CourtNumber, &m.TeamAID, &m.TeamBID, &m.TrackerTeamID,
			&m.StartTime, &m.Status, &m.CurrentSet, &m.ScoreA, &m.ScoreB, &m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}

	for _, m := range matches {
		if m.Sets, err = r.GetSets(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET court_number = $1, team_a_id = $2, team_b_id = $3, tracker_team_id = $4, start_time = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		match.CourtNumber,
		match.TeamAID,
		match.TeamBID,
		match.TrackerTeamID,
		match.StartTime,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) AddSetScore(ctx context.Context, exec SQLExecutor, matchID, setNumber, deltaA, deltaB int) error {
	query := `
		UPDATE match_sets
		SET score_a = GREATEST(0, score_a + $1), score_b = GREATEST(0, score_b + $2)
		WHERE match_id = $3 AND set_number = $4`

	result, err := exec.ExecContext(ctx, query, deltaA, deltaB, matchID, setNumber)
	if err != nil {
		return fmt.Errorf("failed to update set %d score for match %d: %w", setNumber, matchID, err)
	}
	return checkAffectedRows(result, ErrMatchSetNotFound)
}

func (r *postgresMatchRepository) AddMirrorScore(ctx context.Context, exec SQLExecutor, matchID, deltaA, deltaB int) error {
	query := `
		UPDATE matches
		SET score_a = GREATEST(0, score_a + $1), score_b = GREATEST(0, score_b + $2)
		WHERE id = $3`

	result, err := exec.ExecContext(ctx, query, deltaA, deltaB, matchID)
	if err != nil {
		return fmt.Errorf("failed to update mirror score for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) GetSets(ctx context.Context, matchID int) ([]models.SetScore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT set_number, score_a, score_b, completed FROM match_sets WHERE match_id = $1 ORDER BY set_number ASC`,
		matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets for match %d: %w", matchID, err)
	}
	defer rows.Close()

	sets := make([]models.SetScore, 0, 3)
	for rows.Next() {
		var s models.SetScore
		if scanErr := rows.Scan(&s.Number, &s.ScoreA, &s.ScoreB, &s.Completed); scanErr != nil {
			return nil, fmt.Errorf("failed to scan set row: %w", scanErr)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func (r *postgresMatchRepository) CompleteSet(ctx context.Context, exec SQLExecutor, matchID, setNumber int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE match_sets SET completed = TRUE WHERE match_id = $1 AND set_number = $2`,
		matchID, setNumber)
	if err != nil {
		return fmt.Errorf("failed to complete set %d for match %d: %w", setNumber, matchID, err)
	}
	return checkAffectedRows(result, ErrMatchSetNotFound)
}

// SetCurrentSet moves the match to the given set and points the aggregate
// mirror at that set's score pair.
func (r *postgresMatchRepository) SetCurrentSet(ctx context.Context, exec SQLExecutor, matchID, setNumber, scoreA, scoreB int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET current_set = $1, score_a = $2, score_b = $3 WHERE id = $4`,
		setNumber, scoreA, scoreB, matchID)
	if err != nil {
		return fmt.Errorf("failed to set current set %d for match %d: %w", setNumber, matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Finalize marks the match completed and locks every set.
func (r *postgresMatchRepository) Finalize(ctx context.Context, exec SQLExecutor, matchID int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`, models.MatchStatusCompleted, matchID)
	if err != nil {
		return fmt.Errorf("failed to finalize match %d: %w", matchID, err)
	}
	if err = checkAffectedRows(result, ErrMatchNotFound); err != nil {
		return err
	}

	if _, err = exec.ExecContext(ctx,
		`UPDATE match_sets SET completed = TRUE WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to lock sets for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_tracker_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
