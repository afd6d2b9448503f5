package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
	"github.com/courtside/volleytrack/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TeamInput struct {
	Name      string  `json:"name"`
	Color     *string `json:"color"`
	PlayerIDs []int   `json:"player_ids"`
}

type TeamService interface {
	Create(ctx context.Context, input TeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int, expandPlayers bool) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, id int, input TeamInput) (*models.Team, error)
	Delete(ctx context.Context, id int) error

	SetPassword(ctx context.Context, teamID int, password string) error
	UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *teamService) Create(ctx context.Context, input TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{Name: name, Color: input.Color}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, s.mapTeamError(err)
	}

	if len(input.PlayerIDs) > 0 {
		if err := s.teamRepo.SetPlayers(ctx, team.ID, input.PlayerIDs); err != nil {
			return nil, s.mapTeamError(err)
		}
		team.PlayerIDs = input.PlayerIDs
	}
	return s.withLogoURL(team), nil
}

func (s *teamService) GetByID(ctx context.Context, id int, expandPlayers bool) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapTeamError(err)
	}
	if expandPlayers {
		if team.Players, err = s.teamRepo.ListPlayers(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.withLogoURL(team), nil
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.withLogoURL(t)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id int, input TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{ID: id, Name: name, Color: input.Color}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, s.mapTeamError(err)
	}

	// PlayerIDs nil means "leave the roster alone"; an empty slice
	// clears it.
	if input.PlayerIDs != nil {
		if err := s.teamRepo.SetPlayers(ctx, id, input.PlayerIDs); err != nil {
			return nil, s.mapTeamError(err)
		}
	}
	return s.GetByID(ctx, id, false)
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	return s.mapTeamError(s.teamRepo.Delete(ctx, id))
}

func (s *teamService) SetPassword(ctx context.Context, teamID int, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return s.mapTeamError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash team password: %w", err)
	}
	return s.teamRepo.SetPasswordHash(ctx, teamID, string(hash))
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("logo uploads are not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, s.mapTeamError(err)
	}

	key := fmt.Sprintf("team-logos/%d/%s", teamID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	if err = s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil {
		// Best effort; an orphaned object is not worth failing the update.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	team.LogoKey = &result.Key
	return s.withLogoURL(team), nil
}

func (s *teamService) withLogoURL(team *models.Team) *models.Team {
	if team.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
	return team
}

func (s *teamService) mapTeamError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	default:
		return err
	}
}
