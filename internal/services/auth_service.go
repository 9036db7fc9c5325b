package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BradenHooton/tiro/internal/models"
	pkgauth "github.com/BradenHooton/tiro/pkg/auth"
	pkglogger "github.com/BradenHooton/tiro/pkg/logger"
)

const minUsernameLen = 3

// UserRepository defines the account storage used by the auth and profile
// services.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// LoginDelayer pads a login attempt that began at start.
type LoginDelayer interface {
	WaitFrom(ctx context.Context, start time.Time, success bool)
}

// RequestMeta identifies the client for the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username           string
	Email              string
	Password           string
	FullName           string
	Phone              string
	RegistrationNumber string
	Club               string
	Category           string
}

// AuthService handles registration, login and credential changes.
type AuthService struct {
	repo          UserRepository
	tokens        TokenIssuer
	authn         TokenAuthenticator
	delay         LoginDelayer
	logger        *slog.Logger
	audit         *pkglogger.AuditLogger
	env           string
	now           func() time.Time
	checkPassword func(hash, password string) bool
}

func NewAuthService(repo UserRepository, tokens TokenIssuer, authn TokenAuthenticator, delay LoginDelayer, logger *slog.Logger, audit *pkglogger.AuditLogger, env string) *AuthService {
	return &AuthService{
		repo:          repo,
		tokens:        tokens,
		authn:         authn,
		delay:         delay,
		logger:        logger,
		audit:         audit,
		env:           env,
		now:           time.Now,
		checkPassword: pkgauth.CheckPassword,
	}
}

// Register creates an active account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*AuthResult, error) {
	user, err := s.newAccount(in)
	if err != nil {
		s.logger.Info("registration rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	hash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hash

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration conflict", slog.String("reason", err.Error()))
			s.audit.Record(ctx, pkglogger.AuditEvent{
				Type:          pkglogger.EventRegister,
				Username:      user.Username,
				IPAddress:     meta.IPAddress,
				UserAgent:     meta.UserAgent,
				FailureReason: "duplicate_account",
			})
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)),
	)
	s.audit.Record(ctx, pkglogger.AuditEvent{
		Type:      pkglogger.EventRegister,
		UserID:    created.ID,
		Username:  created.Username,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return s.issue(created)
}

func (s *AuthService) newAccount(in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	switch {
	case username == "":
		return nil, models.NewValidationError("username", "username is required")
	case email == "":
		return nil, models.NewValidationError("email", "email is required")
	case in.Password == "":
		return nil, models.NewValidationError("password", "password is required")
	case fullName == "":
		return nil, models.NewValidationError("full_name", "full_name is required")
	}

	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, models.NewValidationError("username",
			fmt.Sprintf("username must be at least %d characters", minUsernameLen))
	}
	if !pkgauth.ValidateEmail(email) {
		return nil, models.ErrInvalidEmail
	}
	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	return &models.User{
		Username:           username,
		Email:              email,
		FullName:           fullName,
		Phone:              strings.TrimSpace(in.Phone),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		Club:               strings.TrimSpace(in.Club),
		Category:           strings.TrimSpace(in.Category),
		IsActive:           true,
	}, nil
}

// Login accepts a username or an email address. Unknown accounts still pay
// for a bcrypt comparison, and failures are padded by the login delayer.
func (s *AuthService) Login(ctx context.Context, login, password string, meta RequestMeta) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, models.NewValidationError("username", "username and password are required")
	}

	start := time.Now()
	fail := func(userID, reason string, err error) (*AuthResult, error) {
		s.delay.WaitFrom(ctx, start, false)
		s.logger.Info("login failed",
			slog.String("reason", reason),
			pkglogger.RedactedAttr("login", login, s.env),
		)
		s.audit.Record(ctx, pkglogger.AuditEvent{
			Type:          pkglogger.EventLogin,
			UserID:        userID,
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
			FailureReason: reason,
		})
		return nil, err
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.checkPassword(pkgauth.DummyHash(), password)
			return fail("", "unknown_account", models.ErrInvalidCredentials)
		}
		s.logger.Error("failed to look up account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !s.checkPassword(user.PasswordHash, password) {
		return fail(user.ID, "invalid_credentials", models.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return fail(user.ID, "account_disabled", models.ErrAccountDisabled)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error("failed to record last login", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.LastLogin = &now
	s.delay.WaitFrom(ctx, start, true)

	s.audit.Record(ctx, pkglogger.AuditEvent{
		Type:      pkglogger.EventLogin,
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ChangePassword replaces the password of user after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, current, next string, meta RequestMeta) error {
	if current == "" || next == "" {
		return models.NewValidationError("new_password", "current_password and new_password are required")
	}

	record := func(success bool, reason string) {
		s.audit.Record(ctx, pkglogger.AuditEvent{
			Type:          pkglogger.EventPasswordChange,
			UserID:        user.ID,
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
			Success:       success,
			FailureReason: reason,
		})
	}

	if !s.checkPassword(user.PasswordHash, current) {
		record(false, "wrong_current_password")
		return models.ErrWrongPassword
	}
	if err := pkgauth.ValidatePassword(next); err != nil {
		record(false, "weak_password")
		return err
	}

	hash, err := pkgauth.HashPassword(next)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	user.PasswordHash = hash
	record(true, "")
	return nil
}

// VerifyToken reports the account behind token. Any rejection is returned
// as models.ErrUnauthorized.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewValidationError("token", "token is required")
	}

	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to verify token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// Logout only records the event. Tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, user *models.User, meta RequestMeta) {
	s.audit.Record(ctx, pkglogger.AuditEvent{
		Type:      pkglogger.EventLogout,
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Success:   true,
	})
}
