package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/tiro/internal/handlers"
	"github.com/BradenHooton/tiro/internal/middleware"
	"github.com/BradenHooton/tiro/internal/models"
)

type rejectAll struct{}

func (rejectAll) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return nil, models.ErrUnauthorized
}

type healthy struct{}

func (healthy) HealthCheck(ctx context.Context) error { return nil }

func newRouter(limit middleware.RateLimitConfig) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, Handlers{
			Health:       handlers.NewHealthHandler(healthy{}, logger),
			Auth:         handlers.NewAuthHandler(nil, nil, nil),
			Progress:     handlers.NewProgressHandler(nil, nil),
			Training:     handlers.NewTrainingHandler(nil),
			Weapons:      handlers.NewWeaponHandler(nil),
			Competitions: handlers.NewCompetitionHandler(nil),
		}, Deps{
			Authenticator: rejectAll{},
			AuthRateLimit: limit,
			Logger:        logger,
		})
	})
	return router
}

func TestRoutes_ProtectedRequireToken(t *testing.T) {
	router := newRouter(middleware.RateLimitConfig{RequestsPerMinute: 2})

	protected := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/progress"},
		{http.MethodPost, "/api/progress/update"},
		{http.MethodPost, "/api/levels"},
		{http.MethodPost, "/api/weapons"},
		{http.MethodDelete, "/api/weapons/6f1c2a52-3c1e-4b8e-9a57-1d2a3b4c5d6e"},
		{http.MethodPost, "/api/competitions"},
		{http.MethodGet, "/api/training-sessions"},
		{http.MethodGet, "/api/training-sessions/stats"},
	}
	for _, tt := range protected {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoutes_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(middleware.RateLimitConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func postLogins(router http.Handler, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("not json"))
		req.RemoteAddr = "203.0.113.5:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRoutes_LoginIsRateLimited(t *testing.T) {
	codes := postLogins(newRouter(middleware.RateLimitConfig{RequestsPerMinute: 2}), 3)
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRoutes_UnsetRateLimitUsesDefault(t *testing.T) {
	n := middleware.DefaultAuthRateLimit().RequestsPerMinute
	codes := postLogins(newRouter(middleware.RateLimitConfig{}), n+1)
	for i, code := range codes[:n] {
		assert.Equal(t, http.StatusBadRequest, code, "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[n])
}
