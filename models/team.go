package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color,omitempty" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Ordered roster. PlayerIDs is always populated on reads,
	// Players only when the caller asks for expanded members.
	PlayerIDs []int    `json:"player_ids" db:"-"`
	Players   []Player `json:"players,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
