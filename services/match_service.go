package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/volleytrack/live"
	"github.com/courtside/volleytrack/metrics"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
	"github.com/google/uuid"
)

type MatchInput struct {
	CourtNumber   int       `json:"court_number"`
	TeamAID       int       `json:"team_a_id"`
	TeamBID       int       `json:"team_b_id"`
	TrackerTeamID *int      `json:"tracker_team_id"`
	StartTime     time.Time `json:"start_time"`
}

// MatchScore is the scoreboard read model: the per-set pairs plus the
// aggregate mirror of the current set.
type MatchScore struct {
	MatchID    int               `json:"match_id"`
	Status     models.MatchStatus `json:"status"`
	CurrentSet int               `json:"current_set"`
	ScoreA     int               `json:"score_a"`
	ScoreB     int               `json:"score_b"`
	Sets       []models.SetScore `json:"sets"`
}

type MatchService interface {
	Create(ctx context.Context, input MatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, status *models.MatchStatus) ([]*models.Match, error)
	Update(ctx context.Context, id int, input MatchInput) (*models.Match, error)
	Delete(ctx context.Context, id int) error

	// AdvanceSet moves a match from set N to N+1. Valid only from sets 1
	// and 2; the current set is locked and the aggregate mirror is
	// repointed at the new set's scores.
	AdvanceSet(ctx context.Context, matchID int, actorTeamID *int) (*models.Match, error)

	// Finalize completes the match and locks every set.
	Finalize(ctx context.Context, matchID int, actorTeamID *int) (*models.Match, error)

	GetScore(ctx context.Context, matchID int) (*MatchScore, error)
}

type matchService struct {
	tx             repositories.Transactor
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	trackerLogRepo repositories.TrackerLogRepository
	hub            Broadcaster
	metrics        metrics.Recorder
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	trackerLogRepo repositories.TrackerLogRepository,
	hub Broadcaster,
	recorder metrics.Recorder,
) MatchService {
	return &matchService{
		tx:             tx,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		trackerLogRepo: trackerLogRepo,
		hub:            hub,
		metrics:        recorder,
	}
}

func (s *matchService) Create(ctx context.Context, input MatchInput) (*models.Match, error) {
	if input.TeamAID == 0 || input.TeamBID == 0 || input.TeamAID == input.TeamBID {
		return nil, ErrMatchTeamsRequired
	}

	match := &models.Match{
		CourtNumber:   input.CourtNumber,
		TeamAID:       input.TeamAID,
		TeamBID:       input.TeamBID,
		TrackerTeamID: input.TrackerTeamID,
		StartTime:     input.StartTime,
	}
	if match.CourtNumber <= 0 {
		match.CourtNumber = 1
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, s.mapMatchError(err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapMatchError(err)
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, status *models.MatchStatus) ([]*models.Match, error) {
	return s.matchRepo.List(ctx, status)
}

func (s *matchService) Update(ctx context.Context, id int, input MatchInput) (*models.Match, error) {
	if input.TeamAID == 0 || input.TeamBID == 0 || input.TeamAID == input.TeamBID {
		return nil, ErrMatchTeamsRequired
	}

	match := &models.Match{
		ID:            id,
		CourtNumber:   input.CourtNumber,
		TeamAID:       input.TeamAID,
		TeamBID:       input.TeamBID,
		TrackerTeamID: input.TrackerTeamID,
		StartTime:     input.StartTime,
	}
	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, s.mapMatchError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	return s.mapMatchError(s.matchRepo.Delete(ctx, id))
}

func (s *matchService) AdvanceSet(ctx context.Context, matchID int, actorTeamID *int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchCompleted
	}
	if match.CurrentSet >= 3 {
		return nil, ErrInvalidSetAdvance
	}

	next := match.CurrentSet + 1
	nextSet := match.Set(next)
	if nextSet == nil {
		return nil, fmt.Errorf("match %d is missing set %d", matchID, next)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.matchRepo.CompleteSet(ctx, exec, matchID, match.CurrentSet); txErr != nil {
			return txErr
		}
		return s.matchRepo.SetCurrentSet(ctx, exec, matchID, next, nextSet.ScoreA, nextSet.ScoreB)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorTeamID, &matchID, models.TrackerActionSetAdvance,
		fmt.Sprintf("set %d -> %d", match.CurrentSet, next))
	s.metrics.SetAdvanced()

	updated, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(live.MatchRoom(matchID), live.Message{
		Type:    live.TypeSetAdvanced,
		RoomID:  live.MatchRoom(matchID),
		Payload: updated,
	})
	return updated, nil
}

func (s *matchService) Finalize(ctx context.Context, matchID int, actorTeamID *int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchCompleted
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.Finalize(ctx, exec, matchID)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorTeamID, &matchID, models.TrackerActionFinalize, "")
	s.metrics.MatchFinalized()

	updated, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(live.MatchRoom(matchID), live.Message{
		Type:    live.TypeMatchFinal,
		RoomID:  live.MatchRoom(matchID),
		Payload: updated,
	})
	return updated, nil
}

func (s *matchService) GetScore(ctx context.Context, matchID int) (*MatchScore, error) {
	match, err := s.GetByID(ctx, matchID)
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

func (s *matchService) audit(ctx context.Context, teamID, matchID *int, action, detail string) {
	_ = s.trackerLogRepo.Append(ctx, &models.TrackerLog{
		ID:      uuid.NewString(),
		TeamID:  teamID,
		MatchID: matchID,
		Action:  action,
		Detail:  detail,
	})
}

func (s *matchService) mapMatchError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrTeamNotFound
	default:
		return err
	}
}
