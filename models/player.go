package models

import "time"

type Player struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	JerseyNumber *int      `json:"jersey_number,omitempty" db:"jersey_number"`
	JerseyName   *string   `json:"jersey_name,omitempty" db:"jersey_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
