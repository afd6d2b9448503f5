package models

import "time"

// Tracker audit actions. Informational only: entries are never mutated,
// reversed, or read by anything except the admin observability screens.
const (
	TrackerActionLogin       = "login"
	TrackerActionLogout      = "logout"
	TrackerActionMatchSelect = "match_select"
	TrackerActionSetAdvance  = "set_advance"
	TrackerActionScoreChange = "score_change"
	TrackerActionFinalize    = "match_finalize"
)

type TrackerLog struct {
	ID        string    `json:"id" db:"id"`
	TeamID    *int      `json:"team_id,omitempty" db:"team_id"`
	MatchID   *int      `json:"match_id,omitempty" db:"match_id"`
	Action    string    `json:"action" db:"action"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
