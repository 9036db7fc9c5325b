package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/BradenHooton/tiro/internal/models"
)

const (
	DefaultPerPage     = 10
	MaxPerPage         = 100
	MaxPage            = 1_000_000 // keeps the row offset far from overflow
	DefaultRecentLimit = 5
	evolutionWindow    = 7
)

type TrainingSessionRepository interface {
	List(ctx context.Context, f models.TrainingSessionFilter) ([]*models.TrainingSession, int, error)
	Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error)
	GetByID(ctx context.Context, userID, id string) (*models.TrainingSession, error)
	Create(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error)
	Update(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error)
	Delete(ctx context.Context, userID, id string) error
	Totals(ctx context.Context, userID string) (*models.TrainingTotals, error)
	StatsByWeapon(ctx context.Context, userID string) ([]*models.WeaponTrainingStats, error)
}

type WeaponGetter interface {
	GetByID(ctx context.Context, id string) (*models.Weapon, error)
}

// TrainingInput is a new session. Date defaults to today.
type TrainingInput struct {
	WeaponID        string
	ShotsFired      int
	Hits            int
	Score           float64
	Notes           string
	DurationMinutes *int
	Date            *time.Time
}

// TrainingUpdate holds the fields to change on a session; nil means keep.
type TrainingUpdate struct {
	WeaponID        *string
	ShotsFired      *int
	Hits            *int
	Score           *float64
	Notes           *string
	DurationMinutes *int
	Date            *time.Time
}

// TrainingPage is one page of a session listing.
type TrainingPage struct {
	Sessions []*models.TrainingSession
	Page     int
	PerPage  int
	Total    int
	Pages    int
	HasNext  bool
	HasPrev  bool
}

type TrainingGeneralStats struct {
	TotalSessions int
	TotalShots    int
	TotalHits     int
	AvgAccuracy   float64
	AvgScore      float64
}

type WeaponBreakdown struct {
	WeaponName string
	Caliber    string
	Sessions   int
	Shots      int
	Hits       int
	Accuracy   float64
	AvgScore   float64
}

type EvolutionPoint struct {
	Date     time.Time
	Accuracy float64
	Score    float64
}

type TrainingStats struct {
	General   TrainingGeneralStats
	ByWeapon  []WeaponBreakdown
	Evolution []EvolutionPoint
}

// TrainingService records training sessions for the calling member. It never
// touches the progress snapshot.
type TrainingService struct {
	repo    TrainingSessionRepository
	weapons WeaponGetter
	logger  *slog.Logger
	now     func() time.Time
}

func NewTrainingService(repo TrainingSessionRepository, weapons WeaponGetter, logger *slog.Logger) *TrainingService {
	return &TrainingService{repo: repo, weapons: weapons, logger: logger, now: time.Now}
}

func (s *TrainingService) List(ctx context.Context, userID, weaponID string, page, perPage int) (*TrainingPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return nil, models.NewValidationError("page", fmt.Sprintf("page must be at most %d", MaxPage))
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	sessions, total, err := s.repo.List(ctx, models.TrainingSessionFilter{
		UserID:   userID,
		WeaponID: weaponID,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			return nil, models.NewValidationError("weapon_id", "invalid weapon_id")
		}
		s.logger.Error("failed to list training sessions", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	pages := (total + perPage - 1) / perPage
	return &TrainingPage{
		Sessions: sessions,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		Pages:    pages,
		HasNext:  page < pages,
		HasPrev:  page > 1,
	}, nil
}

func (s *TrainingService) Get(ctx context.Context, userID, id string) (*models.TrainingSession, error) {
	session, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapErr("get training session", err)
	}
	return session, nil
}

func (s *TrainingService) Create(ctx context.Context, userID string, in TrainingInput) (*models.TrainingSession, error) {
	if strings.TrimSpace(in.WeaponID) == "" {
		return nil, models.NewValidationError("weapon_id", "weapon_id is required")
	}

	session := &models.TrainingSession{
		UserID:          userID,
		WeaponID:        strings.TrimSpace(in.WeaponID),
		ShotsFired:      in.ShotsFired,
		Hits:            in.Hits,
		Score:           in.Score,
		Notes:           strings.TrimSpace(in.Notes),
		DurationMinutes: in.DurationMinutes,
		Date:            s.dateOrToday(in.Date),
	}
	if err := validateSession(session); err != nil {
		return nil, err
	}
	if err := s.ensureWeapon(ctx, session.WeaponID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, s.mapErr("create training session", err)
	}

	s.logger.Info("training session recorded",
		slog.String("user_id", userID),
		slog.String("session_id", created.ID),
	)
	return created, nil
}

func (s *TrainingService) Update(ctx context.Context, userID, id string, in TrainingUpdate) (*models.TrainingSession, error) {
	session, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.mapErr("get training session", err)
	}

	weaponChanged := false
	if in.WeaponID != nil && *in.WeaponID != session.WeaponID {
		session.WeaponID = strings.TrimSpace(*in.WeaponID)
		weaponChanged = true
	}
	if in.ShotsFired != nil {
		session.ShotsFired = *in.ShotsFired
	}
	if in.Hits != nil {
		session.Hits = *in.Hits
	}
	if in.Score != nil {
		session.Score = *in.Score
	}
	if in.Notes != nil {
		session.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.DurationMinutes != nil {
		session.DurationMinutes = in.DurationMinutes
	}
	if in.Date != nil {
		session.Date = truncateDay(*in.Date)
	}

	if err := validateSession(session); err != nil {
		return nil, err
	}
	if weaponChanged {
		if err := s.ensureWeapon(ctx, session.WeaponID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, session)
	if err != nil {
		return nil, s.mapErr("update training session", err)
	}
	return updated, nil
}

func (s *TrainingService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.mapErr("delete training session", err)
	}
	s.logger.Info("training session deleted", slog.String("user_id", userID), slog.String("session_id", id))
	return nil
}

func (s *TrainingService) Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxPerPage)

	sessions, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, s.mapErr("list recent sessions", err)
	}
	return sessions, nil
}

// Stats summarises the caller's history with values rounded to two decimals.
// Evolution holds the last sessions, oldest first.
func (s *TrainingService) Stats(ctx context.Context, userID string) (*TrainingStats, error) {
	totals, err := s.repo.Totals(ctx, userID)
	if err != nil {
		return nil, s.mapErr("total training sessions", err)
	}
	perWeapon, err := s.repo.StatsByWeapon(ctx, userID)
	if err != nil {
		return nil, s.mapErr("training stats by weapon", err)
	}
	recent, err := s.repo.Recent(ctx, userID, evolutionWindow)
	if err != nil {
		return nil, s.mapErr("recent training sessions", err)
	}

	stats := &TrainingStats{
		General: TrainingGeneralStats{
			TotalSessions: totals.Sessions,
			TotalShots:    totals.Shots,
			TotalHits:     totals.Hits,
			AvgAccuracy:   round2(models.Accuracy(totals.Hits, totals.Shots)),
			AvgScore:      round2(totals.AvgScore),
		},
		ByWeapon:  make([]WeaponBreakdown, 0, len(perWeapon)),
		Evolution: make([]EvolutionPoint, 0, len(recent)),
	}

	for _, w := range perWeapon {
		stats.ByWeapon = append(stats.ByWeapon, WeaponBreakdown{
			WeaponName: w.WeaponName,
			Caliber:    w.Caliber,
			Sessions:   w.Sessions,
			Shots:      w.Shots,
			Hits:       w.Hits,
			Accuracy:   round2(models.Accuracy(w.Hits, w.Shots)),
			AvgScore:   round2(w.AvgScore),
		})
	}

	for i := len(recent) - 1; i >= 0; i-- {
		stats.Evolution = append(stats.Evolution, EvolutionPoint{
			Date:     recent[i].Date,
			Accuracy: recent[i].Accuracy(),
			Score:    recent[i].Score,
		})
	}

	return stats, nil
}

func (s *TrainingService) ensureWeapon(ctx context.Context, weaponID string) error {
	if _, err := s.weapons.GetByID(ctx, weaponID); err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return models.ErrWeaponNotFound
		}
		s.logger.Error("failed to look up weapon", slog.String("weapon_id", weaponID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

func (s *TrainingService) mapErr(op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrBadRequest):
		// malformed ids never match a row
		return models.ErrNotFound
	}
	s.logger.Error("failed to "+op, slog.Any("error", err))
	return models.ErrInternalServer
}

func (s *TrainingService) dateOrToday(d *time.Time) time.Time {
	if d != nil {
		return truncateDay(*d)
	}
	return truncateDay(s.now())
}

func validateSession(s *models.TrainingSession) error {
	switch {
	case s.ShotsFired < 0:
		return models.NewValidationError("shots_fired", "shots_fired cannot be negative")
	case s.Hits < 0:
		return models.NewValidationError("hits", "hits cannot be negative")
	case s.Hits > s.ShotsFired:
		return models.NewValidationError("hits", "hits cannot exceed shots_fired")
	case s.Score < 0:
		return models.NewValidationError("score", "score cannot be negative")
	case s.DurationMinutes != nil && *s.DurationMinutes <= 0:
		return models.NewValidationError("duration_minutes", "duration_minutes must be positive")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
