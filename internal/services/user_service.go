package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/tiro/internal/models"
	pkgauth "github.com/BradenHooton/tiro/pkg/auth"
	pkglogger "github.com/BradenHooton/tiro/pkg/logger"
)

// UserService manages member profiles.
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

func NewUserService(repo UserRepository, logger *slog.Logger, audit *pkglogger.AuditLogger) *UserService {
	return &UserService{repo: repo, logger: logger, audit: audit}
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// UpdateProfile applies the fields present in update. A new email must be
// well formed and not used by another account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	update.FullName = trimPtr(update.FullName)
	update.Phone = trimPtr(update.Phone)
	update.RegistrationNumber = trimPtr(update.RegistrationNumber)
	update.Club = trimPtr(update.Club)
	update.Category = trimPtr(update.Category)

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !pkgauth.ValidateEmail(email) {
			return nil, models.ErrInvalidEmail
		}
		update.Email = &email

		existing, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != userID:
			s.logger.Info("profile update rejected: email in use", slog.String("user_id", userID))
			return nil, models.ErrEmailTaken
		case err != nil && !errors.Is(err, models.ErrNotFound):
			s.logger.Error("failed to check email", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	user, err := s.repo.UpdateProfile(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrEmailTaken):
			return nil, err
		case errors.Is(err, models.ErrConflict):
			return nil, models.ErrEmailTaken
		}
		s.logger.Error("failed to update profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.Record(ctx, pkglogger.AuditEvent{
		Type:    pkglogger.EventProfileUpdate,
		UserID:  userID,
		Success: true,
	})
	return user, nil
}

// EnsureAdmin creates an administrator account unless the username already
// exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !pkgauth.ValidateEmail(email) {
		return false, models.ErrInvalidEmail
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return false, err
	}

	created, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     "Administrator",
		IsActive:     true,
		IsAdmin:      true,
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("admin account created", slog.String("user_id", created.ID), slog.String("username", username))
	s.audit.Record(ctx, pkglogger.AuditEvent{
		Type:     pkglogger.EventAdminBootstrap,
		UserID:   created.ID,
		Username: created.Username,
		Success:  true,
	})
	return true, nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
