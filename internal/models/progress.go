package models

import "time"

// ProgressSnapshot is the cached progress row of one member. It is rebuilt
// wholesale from the training history on every recompute.
type ProgressSnapshot struct {
	ID              string
	UserID          string
	CurrentLevelID  *string
	CurrentLevel    *Level // Populated on reads
	TotalSessions   int
	TotalShots      int
	TotalHits       int
	AverageScore    float64
	LastSessionDate *time.Time
	UpdatedAt       time.Time
}

// Accuracy returns total hits as a percentage of total shots.
func (p *ProgressSnapshot) Accuracy() float64 {
	return Accuracy(p.TotalHits, p.TotalShots)
}

// SameContents reports whether two snapshots hold the same derived values,
// ignoring identity and timestamps.
func (p *ProgressSnapshot) SameContents(other *ProgressSnapshot) bool {
	if other == nil {
		return false
	}
	if !equalStringPtr(p.CurrentLevelID, other.CurrentLevelID) {
		return false
	}
	if !equalTimePtr(p.LastSessionDate, other.LastSessionDate) {
		return false
	}
	return p.UserID == other.UserID &&
		p.TotalSessions == other.TotalSessions &&
		p.TotalShots == other.TotalShots &&
		p.TotalHits == other.TotalHits &&
		p.AverageScore == other.AverageScore
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
