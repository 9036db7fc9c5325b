package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/progress"
	"github.com/BradenHooton/tiro/internal/repositories"
)

type ProgressStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	InTx(ctx context.Context, fn func(tx repositories.ProgressTx) error) error
}

type LevelRepository interface {
	List(ctx context.Context) ([]*models.Level, error)
	Create(ctx context.Context, level *models.Level) (*models.Level, error)
}

// ProgressService owns the per-member progress snapshot. The snapshot is
// only rebuilt by Recompute; training changes leave it stale until then.
type ProgressService struct {
	store  ProgressStore
	levels LevelRepository
	logger *slog.Logger
}

func NewProgressService(store ProgressStore, levels LevelRepository, logger *slog.Logger) *ProgressService {
	return &ProgressService{store: store, levels: levels, logger: logger}
}

// Recompute rebuilds the snapshot of userID from its full training history
// in a single transaction. The stored row is left untouched when nothing
// changed.
func (s *ProgressService) Recompute(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	var result *models.ProgressSnapshot

	err := s.store.InTx(ctx, func(tx repositories.ProgressTx) error {
		existing, err := tx.GetSnapshotForUpdate(ctx, userID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}

		sessions, err := tx.ListSessionsByUser(ctx, userID)
		if err != nil {
			return err
		}
		levels, err := tx.ListLevels(ctx)
		if err != nil {
			return err
		}

		stats := progress.Aggregate(sessions)
		level := progress.NewLadder(levels).Resolve(stats.AverageScore)

		computed := &models.ProgressSnapshot{
			UserID:          userID,
			TotalSessions:   stats.Count,
			TotalShots:      stats.TotalShots,
			TotalHits:       stats.TotalHits,
			AverageScore:    stats.AverageScore,
			LastSessionDate: stats.LastSessionDate,
		}
		if level != nil {
			computed.CurrentLevelID = &level.ID
		}

		if existing != nil && existing.SameContents(computed) {
			result = existing
		} else {
			result, err = tx.UpsertSnapshot(ctx, computed)
			if err != nil {
				return err
			}
		}
		result.CurrentLevel = level
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			// the member vanished between authentication and the write
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to recompute progress", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("progress recomputed",
		slog.String("user_id", userID),
		slog.Int("total_sessions", result.TotalSessions),
		slog.Float64("average_score", result.AverageScore),
	)
	return result, nil
}

// GetProgress returns the stored snapshot of userID.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	snap, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get progress", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return snap, nil
}

// NextLevel projects the stored snapshot onto the current ladder.
func (s *ProgressService) NextLevel(ctx context.Context, userID string) (*progress.Projection, error) {
	snap, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	levels, err := s.levels.List(ctx)
	if err != nil {
		s.logger.Error("failed to list levels", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	ladder := progress.NewLadder(levels)
	current := snap.CurrentLevel
	if current == nil {
		current = ladder.Resolve(snap.AverageScore)
	}

	p := ladder.Project(current, snap.AverageScore)
	return &p, nil
}
