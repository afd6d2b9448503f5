package services

import (
	"context"
	"strings"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
)

type FeedbackService interface {
	Submit(ctx context.Context, name, message string) (*models.Feedback, error)
	List(ctx context.Context) ([]*models.Feedback, error)
}

type feedbackService struct {
	repo repositories.FeedbackRepository
}

func NewFeedbackService(repo repositories.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

func (s *feedbackService) Submit(ctx context.Context, name, message string) (*models.Feedback, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrFeedbackMsgRequired
	}
	entry := &models.Feedback{Name: strings.TrimSpace(name), Message: strings.TrimSpace(message)}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *feedbackService) List(ctx context.Context) ([]*models.Feedback, error) {
	return s.repo.List(ctx)
}
