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
	ErrStatUnknown       = errors.New("unknown stat name")
	ErrPlayerStatsAbsent = errors.New("player stats row not found")
)

// statColumns whitelists the mapping from API stat names to player_stats
// columns. Stat names never reach SQL text except through this table.
var statColumns = map[string]string{
	"aces":   "aces",
	"spikes": "spikes",
	"blocks": "blocks",
	"tips":   "tips",
	"dumps":  "dumps",
	"digs":   "digs",
	"points": "points",

	"serveErrors": "serve_errors",
	"spikeErrors": "spike_errors",
	"netTouches":  "net_touches",
	"footFaults":  "foot_faults",
	"carries":     "carries",
	"reaches":     "reaches",
	"outOfBounds": "out_of_bounds",
	"faults":      "faults",

	"neutralBlocks": "neutral_blocks",
}

const playerStatsColumns = `
	match_id, player_id, set_number,
	aces, spikes, blocks, tips, dumps, digs, points,
	serve_errors, spike_errors, net_touches, foot_faults,
	carries, reaches, out_of_bounds, faults, neutral_blocks`

type StatRepository interface {
	// Increment atomically adds value to one counter, creating the
	// match/player/set row on first touch.
	Increment(ctx context.Context, exec SQLExecutor, matchID, playerID, setNumber int, statName string, value int) error

	// Decrement atomically subtracts value from one counter, clamped at
	// zero. Missing rows are treated as already-zero, not an error.
	Decrement(ctx context.Context, exec SQLExecutor, matchID, playerID, setNumber int, statName string, value int) error

	Get(ctx context.Context, matchID, playerID, setNumber int) (*models.PlayerStats, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.PlayerStats, error)
	ListByPlayer(ctx context.Context, playerID int, matchIDs []int) ([]models.PlayerStats, error)
	ListAll(ctx context.Context) ([]models.PlayerStats, error)
}

type postgresStatRepository struct {
	db *sql.DB
}

func NewPostgresStatRepository(db *sql.DB) StatRepository {
	return &postgresStatRepository{db: db}
}

func (r *postgresStatRepository) Increment(ctx context.Context, exec SQLExecutor, matchID, playerID, setNumber int, statName string, value int) error {
	column, ok := statColumns[statName]
	if !ok {
		return ErrStatUnknown
	}

	query := fmt.Sprintf(`
		INSERT INTO player_stats (match_id, player_id, set_number, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, player_id, set_number)
		DO UPDATE SET %s = player_stats.%s + EXCLUDED.%s`,
		column, column, column, column)

	if _, err := exec.ExecContext(ctx, query, matchID, playerID, setNumber, value); err != nil {
		return fmt.Errorf("failed to increment %s for player %d in match %d: %w", statName, playerID, matchID, err)
	}
	return nil
}

func (r *postgresStatRepository) Decrement(ctx context.Context, exec SQLExecutor, matchID, playerID, setNumber int, statName string, value int) error {
	column, ok := statColumns[statName]
	if !ok {
		return ErrStatUnknown
	}

	query := fmt.Sprintf(`
		UPDATE player_stats
		SET %s = GREATEST(0, %s - $4)
		WHERE match_id = $1 AND player_id = $2 AND set_number = $3`,
		column, column)

	if _, err := exec.ExecContext(ctx, query, matchID, playerID, setNumber, value); err != nil {
		return fmt.Errorf("failed to decrement %s for player %d in match %d: %w", statName, playerID, matchID, err)
	}
	return nil
}

func (r *postgresStatRepository) Get(ctx context.Context, matchID, playerID, setNumber int) (*models.PlayerStats, error) {
	query := `SELECT ` + playerStatsColumns + `
		FROM player_stats
		WHERE match_id = $1 AND player_id = $2 AND set_number = $3`

	s := &models.PlayerStats{}
	err := scanPlayerStats(r.db.QueryRowContext(ctx, query, matchID, playerID, setNumber), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerStatsAbsent
		}
		return nil, fmt.Errorf("failed to scan player stats: %w", err)
	}
	return s, nil
}

func (r *postgresStatRepository) ListByMatch(ctx context.Context, matchID int) ([]models.PlayerStats, error) {
	query := `SELECT ` + playerStatsColumns + `
		FROM player_stats
		WHERE match_id = $1
		ORDER BY player_id ASC, set_number ASC`

	return r.queryStats(ctx, query, matchID)
}

func (r *postgresStatRepository) ListByPlayer(ctx context.Context, playerID int, matchIDs []int) ([]models.PlayerStats, error) {
	if len(matchIDs) == 0 {
		query := `SELECT ` + playerStatsColumns + `
			FROM player_stats
			WHERE player_id = $1
			ORDER BY match_id ASC, set_number ASC`
		return r.queryStats(ctx, query, playerID)
	}

	query := `SELECT ` + playerStatsColumns + `
		FROM player_stats
		WHERE player_id = $1 AND match_id = ANY($2)
		ORDER BY match_id ASC, set_number ASC`
	return r.queryStats(ctx, query, playerID, intArray(matchIDs))
}

func (r *postgresStatRepository) ListAll(ctx context.Context) ([]models.PlayerStats, error) {
	query := `SELECT ` + playerStatsColumns + `
		FROM player_stats
		ORDER BY player_id ASC, match_id ASC, set_number ASC`
	return r.queryStats(ctx, query)
}

func (r *postgresStatRepository) queryStats(ctx context.Context, query string, args ...interface{}) ([]models.PlayerStats, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.PlayerStats, 0)
	for rows.Next() {
		var s models.PlayerStats
		if scanErr := scanPlayerStats(rows, &s); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player stats row: %w", scanErr)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player stats iteration: %w", err)
	}
	return stats, nil
}

func intArray(ids []int) interface{} {
	arr := make([]int64, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return pq.Array(arr)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayerStats(row rowScanner, s *models.PlayerStats) error {
	return row.Scan(
		&s.MatchID, &s.PlayerID, &s.Set,
		&s.Aces, &s.Spikes, &s.Blocks, &s.Tips, &s.Dumps, &s.Digs, &s.Points,
		&s.ServeErrors, &s.SpikeErrors, &s.NetTouches, &s.FootFaults,
		&s.Carries, &s.Reaches, &s.OutOfBounds, &s.Faults, &s.NeutralBlocks,
	)
}
