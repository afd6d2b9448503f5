package services

import (
	"context"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
	"github.com/google/uuid"
)

type TrackerLogService interface {
	// Append records an audit event. The log is informational only and
	// never read back by the tracking flows.
	Append(ctx context.Context, entry *models.TrackerLog) error
	List(ctx context.Context, limit int) ([]*models.TrackerLog, error)
}

type trackerLogService struct {
	repo repositories.TrackerLogRepository
}

func NewTrackerLogService(repo repositories.TrackerLogRepository) TrackerLogService {
	return &trackerLogService{repo: repo}
}

func (s *trackerLogService) Append(ctx context.Context, entry *models.TrackerLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return s.repo.Append(ctx, entry)
}

func (s *trackerLogService) List(ctx context.Context, limit int) ([]*models.TrackerLog, error) {
	return s.repo.List(ctx, limit)
}
