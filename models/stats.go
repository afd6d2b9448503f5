package models

// PlayerStats is the running counter set for one player in one set of one
// match. It is a mutable total maintained by atomic increments, not an
// event-sourced value; the stat log is the authoritative event history.
//
// JSON field names double as the stat names accepted by the recording API.
type PlayerStats struct {
	MatchID  int `json:"match_id" db:"match_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	Set      int `json:"set" db:"set_number"`

	// Earned: score a point for the acting player's own team.
	Aces   int `json:"aces" db:"aces"`
	Spikes int `json:"spikes" db:"spikes"`
	Blocks int `json:"blocks" db:"blocks"`
	Tips   int `json:"tips" db:"tips"`
	Dumps  int `json:"dumps" db:"dumps"`
	Digs   int `json:"digs" db:"digs"`
	Points int `json:"points" db:"points"`

	// Faults: give the opposing team a point.
	ServeErrors int `json:"serveErrors" db:"serve_errors"`
	SpikeErrors int `json:"spikeErrors" db:"spike_errors"`
	NetTouches  int `json:"netTouches" db:"net_touches"`
	FootFaults  int `json:"footFaults" db:"foot_faults"`
	Carries     int `json:"carries" db:"carries"`
	Reaches     int `json:"reaches" db:"reaches"`
	OutOfBounds int `json:"outOfBounds" db:"out_of_bounds"`
	Faults      int `json:"faults" db:"faults"`

	// Neutral: recorded but never scores.
	NeutralBlocks int `json:"neutralBlocks" db:"neutral_blocks"`
}
