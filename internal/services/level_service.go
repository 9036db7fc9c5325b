package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/tiro/internal/models"
)

// LevelInput describes a new ladder rung.
type LevelInput struct {
	Name     string
	Message  string
	MinScore float64
	Order    int
}

type LevelService struct {
	repo   LevelRepository
	logger *slog.Logger
}

func NewLevelService(repo LevelRepository, logger *slog.Logger) *LevelService {
	return &LevelService{repo: repo, logger: logger}
}

func (s *LevelService) List(ctx context.Context) ([]*models.Level, error) {
	levels, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list levels", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return levels, nil
}

// Create adds a level. Ladder shape (thresholds rising with order) is not
// checked.
func (s *LevelService) Create(ctx context.Context, in LevelInput) (*models.Level, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" || message == "" {
		return nil, models.NewValidationError("name", "name and message are required")
	}

	level, err := s.repo.Create(ctx, &models.Level{
		Name:     name,
		Message:  message,
		MinScore: in.MinScore,
		Order:    in.Order,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create level", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("level created", slog.String("level_id", level.ID), slog.String("name", level.Name))
	return level, nil
}
