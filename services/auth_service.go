package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	// AdminLogin authenticates an admin user by email and password.
	AdminLogin(ctx context.Context, email, password string) (*models.Session, error)

	// TrackerLogin authenticates a team tracker by team id and the team
	// password. Logins are recorded in the tracker audit log.
	TrackerLogin(ctx context.Context, teamID int, password string) (*models.Session, error)

	// Logout records the end of a tracker session. Admin logouts are not
	// audited.
	Logout(ctx context.Context, session *models.Session)

	CreateAdmin(ctx context.Context, email, name, password string) (*models.AdminUser, error)
}

type authService struct {
	userRepo       repositories.UserRepository
	teamRepo       repositories.TeamRepository
	trackerLogRepo repositories.TrackerLogRepository
}

func NewAuthService(
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	trackerLogRepo repositories.TrackerLogRepository,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		teamRepo:       teamRepo,
		trackerLogRepo: trackerLogRepo,
	}
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin user by email: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return &models.Session{
		Role:   models.RoleAdmin,
		UserID: user.ID,
		Name:   user.Name,
	}, nil
}

func (s *authService) TrackerLogin(ctx context.Context, teamID int, password string) (*models.Session, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find team %d: %w", teamID, err)
	}

	hash, err := s.teamRepo.GetPasswordHash(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamCredsNotSet) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to read team credentials: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare team password hash: %w", err)
	}

	s.audit(ctx, &teamID, models.TrackerActionLogin, team.Name)

	return &models.Session{
		Role:   models.RoleTracker,
		TeamID: teamID,
		Name:   team.Name,
	}, nil
}

func (s *authService) Logout(ctx context.Context, session *models.Session) {
	if session == nil || session.Role != models.RoleTracker {
		return
	}
	teamID := session.TeamID
	s.audit(ctx, &teamID, models.TrackerActionLogout, session.Name)
}

func (s *authService) CreateAdmin(ctx context.Context, email, name, password string) (*models.AdminUser, error) {
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// audit appends a tracker log entry. Audit failures never fail the
// operation being audited.
func (s *authService) audit(ctx context.Context, teamID *int, action, detail string) {
	_ = s.trackerLogRepo.Append(ctx, &models.TrackerLog{
		ID:     uuid.NewString(),
		TeamID: teamID,
		Action: action,
		Detail: detail,
	})
}
