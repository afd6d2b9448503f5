package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
)

type PlayerInput struct {
	Name         string  `json:"name"`
	JerseyNumber *int    `json:"jersey_number"`
	JerseyName   *string `json:"jersey_name"`
}

// BulkImportResult reports per-row outcomes. Rows that succeed are never
// rolled back because of rows that fail.
type BulkImportResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

type PlayerService interface {
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
	BulkImport(ctx context.Context, rows []PlayerInput) (*BulkImportResult, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		Name:         name,
		JerseyNumber: input.JerseyNumber,
		JerseyName:   input.JerseyName,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		ID:           id,
		Name:         name,
		JerseyNumber: input.JerseyNumber,
		JerseyName:   input.JerseyName,
	}
	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return s.playerRepo.GetByID(ctx, id)
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	err := s.playerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}

// BulkImport creates players row by row, counting successes and failures.
func (s *playerService) BulkImport(ctx context.Context, rows []PlayerInput) (*BulkImportResult, error) {
	result := &BulkImportResult{}
	for i, row := range rows {
		if _, err := s.Create(ctx, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
