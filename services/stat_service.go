package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/courtside/volleytrack/live"
	"github.com/courtside/volleytrack/metrics"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
	"github.com/courtside/volleytrack/scoring"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const leaderboardConcurrency = 8

type RecordStatInput struct {
	MatchID   int               `json:"match_id"`
	PlayerID  int               `json:"player_id"`
	TeamID    int               `json:"team_id"`
	Stat      string            `json:"stat"`
	BlockType scoring.BlockType `json:"block_type,omitempty"`
}

type RecordStatResult struct {
	Entry    *models.StatLog  `json:"entry"`
	Category scoring.Category `json:"category"`
	DeltaA   int              `json:"delta_a"`
	DeltaB   int              `json:"delta_b"`
	Score    *MatchScore      `json:"score"`

	// Warning is set when the acting player's team matched neither side
	// of the match: the event was logged but no score changed.
	Warning string `json:"warning,omitempty"`
}

type UndoResult struct {
	Entry *models.StatLog `json:"entry"`
	Score *MatchScore     `json:"score"`
}

type PlayerTotals struct {
	PlayerID    int                `json:"player_id"`
	PlayerName  string             `json:"player_name"`
	Totals      models.PlayerStats `json:"totals"`
	TotalEarned int                `json:"total_earned"`
	TotalFaults int                `json:"total_faults"`
	Score       float64            `json:"leaderboard_score"`
}

type StatService interface {
	// RecordStat applies one stat event to the match's current set:
	// counter increment, score derivation, and the append-only log
	// entry, all in one transaction.
	RecordStat(ctx context.Context, session *models.Session, input RecordStatInput) (*RecordStatResult, error)

	// UndoLast reverses the single most recent stat event of a match.
	// logID, when given, must identify that entry; anything older is
	// rejected without mutation.
	UndoLast(ctx context.Context, session *models.Session, matchID int, logID string) (*UndoResult, error)

	MatchStats(ctx context.Context, matchID int) ([]models.PlayerStats, error)
	MatchLogs(ctx context.Context, matchID int) ([]*models.StatLog, error)
	Totals(ctx context.Context, playerID int) (*PlayerTotals, error)
	Leaderboard(ctx context.Context) ([]*PlayerTotals, error)
}

type statService struct {
	tx             repositories.Transactor
	statRepo       repositories.StatRepository
	statLogRepo    repositories.StatLogRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	teamRepo       repositories.TeamRepository
	trackerLogRepo repositories.TrackerLogRepository
	hub            Broadcaster
	metrics        metrics.Recorder
}

func NewStatService(
	tx repositories.Transactor,
	statRepo repositories.StatRepository,
	statLogRepo repositories.StatLogRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	trackerLogRepo repositories.TrackerLogRepository,
	hub Broadcaster,
	recorder metrics.Recorder,
) StatService {
	return &statService{
		tx:             tx,
		statRepo:       statRepo,
		statLogRepo:    statLogRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		teamRepo:       teamRepo,
		trackerLogRepo: trackerLogRepo,
		hub:            hub,
		metrics:        recorder,
	}
}

func (s *statService) RecordStat(ctx context.Context, session *models.Session, input RecordStatInput) (*RecordStatResult, error) {
	statName := scoring.NormalizeStat(input.Stat, input.BlockType)
	category, ok := scoring.CategoryOf(statName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStat, input.Stat)
	}

	match, err := s.loadMatchForTracking(ctx, session, input.MatchID)
	if err != nil {
		return nil, err
	}

	set := match.Set(match.CurrentSet)
	if set == nil {
		return nil, fmt.Errorf("match %d is missing set %d", match.ID, match.CurrentSet)
	}
	if set.Completed {
		return nil, ErrSetLocked
	}

	player, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	teamName := ""
	if team, teamErr := s.teamRepo.GetByID(ctx, input.TeamID); teamErr == nil {
		teamName = team.Name
	} else if !errors.Is(teamErr, repositories.ErrTeamNotFound) {
		return nil, teamErr
	}

	side := scoring.SideOf(input.TeamID, match.TeamAID, match.TeamBID)
	deltaA, deltaB := scoring.Derive(category, side)

	entry := &models.StatLog{
		ID:         uuid.NewString(),
		MatchID:    match.ID,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TeamID:     input.TeamID,
		TeamName:   teamName,
		StatName:   statName,
		Value:      1,
		Category:   string(category),
		Set:        match.CurrentSet,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.statRepo.Increment(ctx, exec, match.ID, player.ID, match.CurrentSet, statName, 1); txErr != nil {
			return txErr
		}
		if deltaA != 0 || deltaB != 0 {
			if txErr := s.matchRepo.AddSetScore(ctx, exec, match.ID, match.CurrentSet, deltaA, deltaB); txErr != nil {
				return txErr
			}
			if txErr := s.matchRepo.AddMirrorScore(ctx, exec, match.ID, deltaA, deltaB); txErr != nil {
				return txErr
			}
		}
		return s.statLogRepo.Append(ctx, exec, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatRecorded(string(category))
	if deltaA != 0 || deltaB != 0 {
		s.auditScoreChange(ctx, session, match.ID, fmt.Sprintf("%s by %s (+%d/+%d)", statName, player.Name, deltaA, deltaB))
	}

	result := &RecordStatResult{
		Entry:    entry,
		Category: category,
		DeltaA:   deltaA,
		DeltaB:   deltaB,
	}
	if side == scoring.SideUnknown {
		result.Warning = "acting player's team matches neither side of the match; event logged without score change"
	}

	if result.Score, err = s.currentScore(ctx, match.ID); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(live.MatchRoom(match.ID), live.Message{
		Type:    live.TypeStatRecorded,
		RoomID:  live.MatchRoom(match.ID),
		Payload: result,
	})
	return result, nil
}

func (s *statService) UndoLast(ctx context.Context, session *models.Session, matchID int, logID string) (*UndoResult, error) {
	match, err := s.loadMatchForTracking(ctx, session, matchID)
	if err != nil {
		return nil, err
	}

	latest, err := s.statLogRepo.Latest(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrStatLogNotFound) {
			return nil, ErrNoEntriesToUndo
		}
		return nil, err
	}
	if logID != "" && logID != latest.ID {
		return nil, ErrNotLatestEntry
	}

	// A locked set blocks reversals the same way it blocks new events.
	if set := match.Set(latest.Set); set != nil && set.Completed {
		return nil, ErrSetLocked
	}

	side := scoring.SideOf(latest.TeamID, match.TeamAID, match.TeamBID)
	deltaA, deltaB := scoring.Derive(scoring.Category(latest.Category), side)

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Counter decrement is clamped at zero in SQL, so undoing against
		// an already-zero counter is a no-op rather than a negative total.
		if txErr := s.statRepo.Decrement(ctx, exec, matchID, latest.PlayerID, latest.Set, latest.StatName, latest.Value); txErr != nil {
			return txErr
		}
		if deltaA != 0 || deltaB != 0 {
			if txErr := s.matchRepo.AddSetScore(ctx, exec, matchID, latest.Set, -deltaA, -deltaB); txErr != nil {
				return txErr
			}
			if txErr := s.matchRepo.AddMirrorScore(ctx, exec, matchID, -deltaA, -deltaB); txErr != nil {
				return txErr
			}
		}
		return s.statLogRepo.Delete(ctx, exec, latest.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatUndone()
	if deltaA != 0 || deltaB != 0 {
		s.auditScoreChange(ctx, session, matchID, fmt.Sprintf("undo %s by %s (-%d/-%d)", latest.StatName, latest.PlayerName, deltaA, deltaB))
	}

	result := &UndoResult{Entry: latest}
	if result.Score, err = s.currentScore(ctx, matchID); err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(live.MatchRoom(matchID), live.Message{
		Type:    live.TypeStatUndone,
		RoomID:  live.MatchRoom(matchID),
		Payload: result,
	})
	return result, nil
}

func (s *statService) MatchStats(ctx context.Context, matchID int) ([]models.PlayerStats, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.statRepo.ListByMatch(ctx, matchID)
}

func (s *statService) MatchLogs(ctx context.Context, matchID int) ([]*models.StatLog, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.statLogRepo.ListByMatch(ctx, matchID)
}

func (s *statService) Totals(ctx context.Context, playerID int) (*PlayerTotals, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	rows, err := s.statRepo.ListByPlayer(ctx, playerID, nil)
	if err != nil {
		return nil, err
	}
	return buildTotals(player, rows), nil
}

// Leaderboard aggregates every player's stats across all matches. The
// per-player reads are independent, so they fan out concurrently.
func (s *statService) Leaderboard(ctx context.Context) ([]*PlayerTotals, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*PlayerTotals, len(players))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardConcurrency)

	for i, player := range players {
		g.Go(func() error {
			rows, rowsErr := s.statRepo.ListByPlayer(gCtx, player.ID, nil)
			if rowsErr != nil {
				return rowsErr
			}
			entries[i] = buildTotals(player, rows)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerName < entries[j].PlayerName
	})
	return entries, nil
}

func buildTotals(player *models.Player, rows []models.PlayerStats) *PlayerTotals {
	totals := scoring.Aggregate(rows)
	totals.PlayerID = player.ID
	totals.MatchID = 0
	totals.Set = 0
	return &PlayerTotals{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		Totals:      totals,
		TotalEarned: scoring.TotalEarned(totals),
		TotalFaults: scoring.TotalFaults(totals),
		Score:       scoring.LeaderboardScore(totals),
	}
}

// loadMatchForTracking fetches the match and enforces the write rules
// shared by record and undo: the match must exist and not be finalized,
// and tracker sessions may only touch matches their team tracks.
func (s *statService) loadMatchForTracking(ctx context.Context, session *models.Session, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchCompleted
	}
	if session != nil && session.Role == models.RoleTracker {
		if match.TrackerTeamID == nil || *match.TrackerTeamID != session.TeamID {
			return nil, ErrNotTrackerTeam
		}
	}
	return match, nil
}

func (s *statService) currentScore(ctx context.Context, matchID int) (*MatchScore, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &MatchScore{
		MatchID:    match.ID,
		Status:     match.Status,
		CurrentSet: match.CurrentSet,
		ScoreA:     match.ScoreA,
		ScoreB:     match.ScoreB,
		Sets:       match.Sets,
	}, nil
}

func (s *statService) auditScoreChange(ctx context.Context, session *models.Session, matchID int, detail string) {
	var teamID *int
	if session != nil && session.Role == models.RoleTracker {
		id := session.TeamID
		teamID = &id
	}
	_ = s.trackerLogRepo.Append(ctx, &models.TrackerLog{
		ID:      uuid.NewString(),
		TeamID:  teamID,
		MatchID: &matchID,
		Action:  models.TrackerActionScoreChange,
		Detail:  detail,
	})
}
