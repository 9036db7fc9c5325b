package models

import "time"

// TrainingSession is one practice session recorded by a member.
type TrainingSession struct {
	ID              string
	UserID          string
	WeaponID        string
	WeaponName      string // Joined "name - caliber", read only
	ShotsFired      int
	Hits            int
	Score           float64
	Notes           string
	DurationMinutes *int
	Date            time.Time // Calendar date, time part is zero
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Accuracy returns hits as a percentage of shots fired, 0 when no shots were fired.
func (s *TrainingSession) Accuracy() float64 {
	return Accuracy(s.Hits, s.ShotsFired)
}

// Accuracy returns hits/shots*100, or 0 when shots is 0.
func Accuracy(hits, shots int) float64 {
	if shots == 0 {
		return 0
	}
	return float64(hits) / float64(shots) * 100
}

// TrainingSessionFilter narrows a session listing.
type TrainingSessionFilter struct {
	UserID   string
	WeaponID string
	Limit    int
	Offset   int
}

// WeaponTrainingStats is the per-weapon breakdown of a member's sessions.
type WeaponTrainingStats struct {
	WeaponName string
	Caliber    string
	Sessions   int
	Shots      int
	Hits       int
	AvgScore   float64
}

// TrainingTotals are overall sums across a member's sessions.
type TrainingTotals struct {
	Sessions int
	Shots    int
	Hits     int
	AvgScore float64
}
