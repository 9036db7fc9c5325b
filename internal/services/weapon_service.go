package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/tiro/internal/models"
)

type WeaponRepository interface {
	List(ctx context.Context) ([]*models.Weapon, error)
	ListByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Weapon, error)
	GetByID(ctx context.Context, id string) (*models.Weapon, error)
	Create(ctx context.Context, w *models.Weapon) (*models.Weapon, error)
	Update(ctx context.Context, w *models.Weapon) (*models.Weapon, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.WeaponStats, error)
}

type WeaponInput struct {
	Name    string
	Caliber string
	Owner   string
}

// WeaponUpdate holds the fields to change; nil means keep.
type WeaponUpdate struct {
	Name    *string
	Caliber *string
	Owner   *string
}

// WeaponService manages the club arsenal.
type WeaponService struct {
	repo   WeaponRepository
	logger *slog.Logger
}

func NewWeaponService(repo WeaponRepository, logger *slog.Logger) *WeaponService {
	return &WeaponService{repo: repo, logger: logger}
}

func (s *WeaponService) List(ctx context.Context) ([]*models.Weapon, error) {
	weapons, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list weapons", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return weapons, nil
}

func (s *WeaponService) ByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error) {
	weapons, err := s.repo.ListByCaliber(ctx, caliber)
	if err != nil {
		s.logger.Error("failed to list weapons by caliber", slog.String("caliber", caliber), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return weapons, nil
}

func (s *WeaponService) ByOwner(ctx context.Context, owner string) ([]*models.Weapon, error) {
	weapons, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list weapons by owner", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return weapons, nil
}

func (s *WeaponService) Get(ctx context.Context, id string) (*models.Weapon, error) {
	weapon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr("get weapon", id, err)
	}
	return weapon, nil
}

// Create registers a weapon on behalf of the calling member.
func (s *WeaponService) Create(ctx context.Context, userID string, in WeaponInput) (*models.Weapon, error) {
	w := &models.Weapon{
		Name:    strings.TrimSpace(in.Name),
		Caliber: strings.TrimSpace(in.Caliber),
		Owner:   strings.TrimSpace(in.Owner),
	}
	if userID != "" {
		w.UserID = &userID
	}
	if err := validateWeapon(w); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, w)
	if err != nil {
		s.logger.Error("failed to create weapon", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("weapon registered", slog.String("weapon_id", created.ID), slog.String("user_id", userID))
	return created, nil
}

func (s *WeaponService) Update(ctx context.Context, id string, in WeaponUpdate) (*models.Weapon, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr("get weapon", id, err)
	}

	if in.Name != nil {
		w.Name = strings.TrimSpace(*in.Name)
	}
	if in.Caliber != nil {
		w.Caliber = strings.TrimSpace(*in.Caliber)
	}
	if in.Owner != nil {
		w.Owner = strings.TrimSpace(*in.Owner)
	}
	if err := validateWeapon(w); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, w)
	if err != nil {
		return nil, s.mapErr("update weapon", id, err)
	}
	return updated, nil
}

// Delete removes a weapon. Weapons referenced by training sessions are kept.
func (s *WeaponService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return s.mapErr("get weapon", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return models.ErrWeaponNotFound
		case errors.Is(err, models.ErrBadRequest):
			s.logger.Info("weapon delete refused, sessions reference it", slog.String("weapon_id", id))
			return models.ErrWeaponInUse
		}
		s.logger.Error("failed to delete weapon", slog.String("weapon_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("weapon deleted", slog.String("weapon_id", id))
	return nil
}

func (s *WeaponService) Stats(ctx context.Context) (*models.WeaponStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute weapon stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return stats, nil
}

func (s *WeaponService) mapErr(op, id string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
		return models.ErrWeaponNotFound
	}
	s.logger.Error("failed to "+op, slog.String("weapon_id", id), slog.Any("error", err))
	return models.ErrInternalServer
}

func validateWeapon(w *models.Weapon) error {
	switch {
	case w.Name == "":
		return models.NewValidationError("name", "name, caliber and owner are required")
	case w.Caliber == "":
		return models.NewValidationError("caliber", "name, caliber and owner are required")
	case w.Owner == "":
		return models.NewValidationError("owner", "name, caliber and owner are required")
	}
	return nil
}
