package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/tiro/internal/models"
)

// ErrInactiveAccount is returned for a valid token whose account is disabled.
var ErrInactiveAccount = fmt.Errorf("%w: %w", models.ErrUnauthorized, models.ErrAccountDisabled)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator resolves a bearer token to a live, active account.
type Authenticator struct {
	tokens *TokenManager
	users  UserLookup
}

func NewAuthenticator(tokens *TokenManager, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate returns the account behind token. Every rejection wraps
// models.ErrUnauthorized; a failing lookup is returned as is.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("token subject no longer exists: %w", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("lookup token subject: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	return user, nil
}
