package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/tiro/internal/models"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

type contextKey string

const userContextKey contextKey = "user"

// authRequiredMessage is the single message for every rejected request, so
// callers cannot tell why a token was refused.
const authRequiredMessage = "Authentication required"

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Middleware rejects requests without a valid bearer token for an active
// account and stores the account in the request context.
func Middleware(authn TokenAuthenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, authRequiredMessage)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, models.ErrUnauthorized) {
					logger.Debug("bearer token rejected",
						slog.String("path", r.URL.Path),
						slog.String("reason", err.Error()),
					)
					pkghttp.WriteUnauthorized(w, authRequiredMessage)
					return
				}
				logger.Error("failed to authenticate request", slog.Any("error", err))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUser stores the authenticated account in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
