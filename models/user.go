package models

import "time"

type SessionRole string

const (
	RoleAdmin   SessionRole = "admin"
	RoleTracker SessionRole = "tracker"
)

type AdminUser struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session is the identity carried by the auth cookie: either an admin
// user or a team tracker.
type Session struct {
	Role   SessionRole `json:"role"`
	UserID int         `json:"user_id,omitempty"`
	TeamID int         `json:"team_id,omitempty"`
	Name   string      `json:"name"`
}
