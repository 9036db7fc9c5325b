package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of a bearer token. Only the identity is carried;
// the full profile is resolved with a live lookup.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
