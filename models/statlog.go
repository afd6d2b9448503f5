package models

import "time"

// StatLog is one recorded stat event. Entries are append-only; the single
// most recent entry for a match is the only one that may ever be deleted
// (the undo path), and deleting it reverses the counter and score changes
// it caused.
type StatLog struct {
	ID         string    `json:"id" db:"id"`
	MatchID    int       `json:"match_id" db:"match_id"`
	PlayerID   int       `json:"player_id" db:"player_id"`
	PlayerName string    `json:"player_name" db:"player_name"`
	TeamID     int       `json:"team_id" db:"team_id"`
	TeamName   string    `json:"team_name" db:"team_name"`
	StatName   string    `json:"stat_name" db:"stat_name"`
	Value      int       `json:"value" db:"value"`
	Category   string    `json:"category" db:"category"`
	Set        int       `json:"set" db:"set_number"`
	CreatedAt  time.Time `json:"timestamp" db:"created_at"`
}
