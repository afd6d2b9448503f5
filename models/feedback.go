package models

import "time"

type Feedback struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
