package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/tiro/internal/models"
)

// TokenTTL is the fixed validity window of an issued token.
const TokenTTL = 24 * time.Hour

var (
	ErrTokenExpired   = fmt.Errorf("token expired: %w", models.ErrUnauthorized)
	ErrTokenMalformed = fmt.Errorf("token malformed: %w", models.ErrUnauthorized)
	ErrTokenSignature = fmt.Errorf("token signature invalid: %w", models.ErrUnauthorized)
)

// TokenManager issues and verifies HS256 bearer tokens with a single signing
// key supplied at construction.
type TokenManager struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

func NewTokenManager(secret string, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	tm.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	return tm
}

// Issue signs a token for user and returns it with its expiry.
func (tm *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	if user == nil || user.ID == "" {
		return "", time.Time{}, fmt.Errorf("cannot issue token without a user id")
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(TokenTTL)

	claims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt.Truncate(time.Second), nil
}

// Parse verifies signature and expiry and returns the claims.
func (tm *TokenManager) Parse(tokenString string) (*models.TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}

	claims := &models.TokenClaims{}
	token, err := tm.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
