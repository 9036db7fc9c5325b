package progress

import (
	"time"

	"github.com/BradenHooton/tiro/internal/models"
)

// Stats summarises a training history.
type Stats struct {
	Count           int
	TotalShots      int
	TotalHits       int
	AverageScore    float64 // 0 when Count is 0
	LastSessionDate *time.Time
}

// Aggregate folds every session into Stats. Order does not matter.
func Aggregate(sessions []*models.TrainingSession) Stats {
	var st Stats
	var scoreSum float64

	for _, s := range sessions {
		if s == nil {
			continue
		}
		st.Count++
		st.TotalShots += s.ShotsFired
		st.TotalHits += s.Hits
		scoreSum += s.Score

		if st.LastSessionDate == nil || s.Date.After(*st.LastSessionDate) {
			d := s.Date
			st.LastSessionDate = &d
		}
	}

	if st.Count > 0 {
		st.AverageScore = scoreSum / float64(st.Count)
	}
	return st
}

// Accuracy returns total hits as a percentage of total shots.
func (s Stats) Accuracy() float64 {
	return models.Accuracy(s.TotalHits, s.TotalShots)
}
