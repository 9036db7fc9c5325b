package models

import "time"

// Level is one rung of the progression ladder.
type Level struct {
	ID        string
	Name      string
	Message   string // Motivational message
	MinScore  float64
	Order     int
	CreatedAt time.Time
}
