package services

import "errors"

// Shared errors, mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed    = errors.New("validation failed")
	ErrPlayerNameRequired  = errors.New("player name is required")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrMatchTeamsRequired  = errors.New("a match needs two distinct teams")
	ErrUnknownStat         = errors.New("unknown stat name")
	ErrSetLocked           = errors.New("set is completed and no longer accepts stat events")
	ErrMatchCompleted      = errors.New("match is finalized")
	ErrInvalidSetAdvance   = errors.New("cannot advance past the final set")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrFeedbackMsgRequired = errors.New("feedback message is required")

	// Undo ordering: the one genuine state-machine rule in the system.
	ErrNotLatestEntry = errors.New("not the most recent entry for this match")
	ErrNoEntriesToUndo = errors.New("match has no stat events to undo")

	// Conflicts
	ErrTeamNameConflict  = errors.New("team name is already in use")
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid credentials")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current session")
	ErrNotTrackerTeam         = errors.New("only the tracker team for this match can record stats")

	// Entity-specific variants of not-found for clearer messages.
	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrMatchNotFound  = errors.New("match not found")
)
