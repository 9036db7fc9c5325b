package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/tiro/internal/models"
)

type CompetitionRepository interface {
	List(ctx context.Context) ([]*models.Competition, error)
	GetByID(ctx context.Context, id string) (*models.Competition, error)
	Create(ctx context.Context, c *models.Competition) (*models.Competition, error)
	AddScore(ctx context.Context, s *models.CompetitionScore) (*models.CompetitionScore, error)
	ListScores(ctx context.Context, competitionID string, newestFirst bool) ([]*models.CompetitionScore, error)
	Ranking(ctx context.Context) ([]*models.CompetitionScore, error)
	Stats(ctx context.Context) (*models.CompetitionStats, error)
}

type ScoreInput struct {
	Score float64
	Stage string
	Notes string
	Date  *time.Time
}

// CompetitionScores is a competition with its scores in the requested order.
type CompetitionScores struct {
	Competition *models.Competition
	Scores      []*models.CompetitionScore
}

// RankingGroup holds the scores of one competition, newest first.
type RankingGroup struct {
	Competition string
	Scores      []*models.CompetitionScore
}

type CompetitionService struct {
	repo   CompetitionRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewCompetitionService(repo CompetitionRepository, logger *slog.Logger) *CompetitionService {
	return &CompetitionService{repo: repo, logger: logger, now: time.Now}
}

func (s *CompetitionService) List(ctx context.Context) ([]*models.Competition, error) {
	comps, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list competitions", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return comps, nil
}

func (s *CompetitionService) Create(ctx context.Context, name, description string) (*models.Competition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Competition{
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("competition name already used", slog.String("name", name))
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create competition", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return created, nil
}

// Scores returns the competition and its scores, newest first.
func (s *CompetitionService) Scores(ctx context.Context, competitionID string) (*CompetitionScores, error) {
	return s.scores(ctx, competitionID, true)
}

// Evolution returns the competition and its scores, oldest first.
func (s *CompetitionService) Evolution(ctx context.Context, competitionID string) (*CompetitionScores, error) {
	return s.scores(ctx, competitionID, false)
}

func (s *CompetitionService) scores(ctx context.Context, competitionID string, newestFirst bool) (*CompetitionScores, error) {
	comp, err := s.get(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.ListScores(ctx, competitionID, newestFirst)
	if err != nil {
		s.logger.Error("failed to list competition scores", slog.String("competition_id", competitionID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &CompetitionScores{Competition: comp, Scores: scores}, nil
}

// AddScore records a result for the calling member.
func (s *CompetitionService) AddScore(ctx context.Context, userID, competitionID string, in ScoreInput) (*models.CompetitionScore, error) {
	stage := strings.TrimSpace(in.Stage)
	if in.Score <= 0 || stage == "" {
		return nil, models.NewValidationError("score", "score and stage are required")
	}
	if _, err := s.get(ctx, competitionID); err != nil {
		return nil, err
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}

	created, err := s.repo.AddScore(ctx, &models.CompetitionScore{
		CompetitionID: competitionID,
		UserID:        userID,
		Score:         in.Score,
		Stage:         stage,
		Notes:         strings.TrimSpace(in.Notes),
		Date:          truncateDay(date),
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to add competition score", slog.String("competition_id", competitionID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("competition score recorded",
		slog.String("competition_id", competitionID),
		slog.String("user_id", userID),
	)
	return created, nil
}

// Ranking groups every score by competition, in competition name order.
func (s *CompetitionService) Ranking(ctx context.Context) ([]RankingGroup, error) {
	scores, err := s.repo.Ranking(ctx)
	if err != nil {
		s.logger.Error("failed to build ranking", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	groups := make([]RankingGroup, 0)
	for _, sc := range scores {
		if n := len(groups); n == 0 || groups[n-1].Competition != sc.CompetitionName {
			groups = append(groups, RankingGroup{Competition: sc.CompetitionName})
		}
		last := &groups[len(groups)-1]
		last.Scores = append(last.Scores, sc)
	}
	return groups, nil
}

func (s *CompetitionService) Stats(ctx context.Context) (*models.CompetitionStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute competition stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	stats.AverageScore = round2(stats.AverageScore)
	return stats, nil
}

func (s *CompetitionService) get(ctx context.Context, id string) (*models.Competition, error) {
	comp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get competition", slog.String("competition_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return comp, nil
}
