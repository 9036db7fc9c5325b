package progress

import (
	"cmp"
	"slices"

	"github.com/BradenHooton/tiro/internal/models"
)

// Ladder is an immutable, order-sorted copy of the level table.
type Ladder struct {
	levels []*models.Level
}

// NewLadder copies levels and sorts them by order. Ties fall back to minimum
// score and then name so resolution is deterministic for malformed ladders.
func NewLadder(levels []*models.Level) *Ladder {
	sorted := make([]*models.Level, 0, len(levels))
	for _, l := range levels {
		if l != nil {
			sorted = append(sorted, l)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *models.Level) int {
		return cmp.Or(
			cmp.Compare(a.Order, b.Order),
			cmp.Compare(a.MinScore, b.MinScore),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return &Ladder{levels: sorted}
}

// Levels returns the ladder in ascending order.
func (l *Ladder) Levels() []*models.Level {
	return slices.Clone(l.levels)
}

func (l *Ladder) Len() int {
	return len(l.levels)
}

// Resolve returns the highest-order level whose minimum score is at most
// avg. When none qualifies the lowest-order level is returned. An empty
// ladder resolves to nil.
func (l *Ladder) Resolve(avg float64) *models.Level {
	if len(l.levels) == 0 {
		return nil
	}
	for i := len(l.levels) - 1; i >= 0; i-- {
		if l.levels[i].MinScore <= avg {
			return l.levels[i]
		}
	}
	return l.levels[0]
}

// Next returns the lowest level ordered strictly above current, or nil at
// the top of the ladder. A nil current means no level has been reached yet.
func (l *Ladder) Next(current *models.Level) *models.Level {
	for _, lvl := range l.levels {
		if current == nil || lvl.Order > current.Order {
			return lvl
		}
	}
	return nil
}

// Projection describes the distance from the current level to the next one.
type Projection struct {
	Current            *models.Level
	Next               *models.Level
	ScoreNeeded        float64
	ProgressPercentage float64
	IsMaxLevel         bool
}

// Project computes progress towards the level after current for an average
// score avg.
func (l *Ladder) Project(current *models.Level, avg float64) Projection {
	next := l.Next(current)
	if next == nil {
		return Projection{
			Current:            current,
			ProgressPercentage: 100,
			IsMaxLevel:         true,
		}
	}

	p := Projection{
		Current:            current,
		Next:               next,
		ScoreNeeded:        max(0, next.MinScore-avg),
		ProgressPercentage: 100,
	}
	if next.MinScore > 0 {
		p.ProgressPercentage = min(100, avg/next.MinScore*100)
	}
	return p
}
