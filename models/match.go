package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

// SetScore is the score pair for one set of a best-of-three match.
// Completed means the set is locked: no stat event may mutate it again.
type SetScore struct {
	Number    int  `json:"number" db:"set_number"`
	ScoreA    int  `json:"score_a" db:"score_a"`
	ScoreB    int  `json:"score_b" db:"score_b"`
	Completed bool `json:"completed" db:"completed"`
}

type Match struct {
	ID            int         `json:"id" db:"id"`
	CourtNumber   int         `json:"court_number" db:"court_number"`
	TeamAID       int         `json:"team_a_id" db:"team_a_id"`
	TeamBID       int         `json:"team_b_id" db:"team_b_id"`
	TrackerTeamID *int        `json:"tracker_team_id,omitempty" db:"tracker_team_id"`
	StartTime     time.Time   `json:"start_time" db:"start_time"`
	Status        MatchStatus `json:"status" db:"status"`
	CurrentSet    int         `json:"current_set" db:"current_set"`

	// ScoreA/ScoreB mirror the current set's score pair.
	ScoreA int `json:"score_a" db:"score_a"`
	ScoreB int `json:"score_b" db:"score_b"`

	Sets []SetScore `json:"sets,omitempty" db:"-"`

	TeamA *Team `json:"team_a,omitempty" db:"-"`
	TeamB *Team `json:"team_b,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Set returns the score pair for set n (1-based), or nil if not loaded.
func (m *Match) Set(n int) *SetScore {
	for i := range m.Sets {
		if m.Sets[i].Number == n {
			return &m.Sets[i]
		}
	}
	return nil
}
