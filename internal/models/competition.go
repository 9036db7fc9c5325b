package models

import "time"

// Competition is a competitive discipline (e.g. "Copa Brasil").
type Competition struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// CompetitionScore is one result a member obtained in a competition stage.
type CompetitionScore struct {
	ID              string
	CompetitionID   string
	CompetitionName string // Joined, read only
	UserID          string
	Score           float64
	Stage           string
	Date            time.Time
	Notes           string
	CreatedAt       time.Time
}

// CompetitionStats summarises every recorded competition score.
type CompetitionStats struct {
	TotalCompetitions     int
	TotalScores           int
	AverageScore          float64
	BestScore             float64
	BestScoreCompetition  *string
	MostActiveCompetition *string
	MostActiveCount       int
}
