package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/handlers"
	"github.com/BradenHooton/tiro/internal/middleware"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

// Handlers groups every HTTP handler mounted under /api.
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Progress     *handlers.ProgressHandler
	Training     *handlers.TrainingHandler
	Weapons      *handlers.WeaponHandler
	Competitions *handlers.CompetitionHandler
}

// Deps carries what the route table needs besides the handlers.
type Deps struct {
	Authenticator auth.TokenAuthenticator
	IPs           *pkghttp.IPResolver
	AuthRateLimit middleware.RateLimitConfig // zero value means DefaultAuthRateLimit
	Logger        *slog.Logger
}

// RegisterRoutes mounts the API on router. Reads of the club catalogue are
// open; anything that writes or touches the caller's own records needs a
// bearer token.
func RegisterRoutes(router chi.Router, h Handlers, deps Deps) {
	limit := deps.AuthRateLimit
	if limit.RequestsPerMinute <= 0 {
		limit = middleware.DefaultAuthRateLimit()
	}
	limited := middleware.RateLimitByIP(limit, deps.IPs)

	router.Get("/health", h.Health.Health)

	// Public routes
	router.Group(func(r chi.Router) {
		r.With(limited).Post("/auth/register", h.Auth.Register)
		r.With(limited).Post("/auth/login", h.Auth.Login)
		r.With(limited).Post("/auth/verify-token", h.Auth.VerifyToken)

		r.Get("/levels", h.Progress.ListLevels)
		r.Get("/users/{id}/progress", h.Progress.UserProgress)
		r.Get("/users/{id}/progress/next-level", h.Progress.UserNextLevel)

		r.Get("/weapons", h.Weapons.List)
		r.Get("/weapons/stats", h.Weapons.Stats)
		r.Get("/weapons/by-caliber/{caliber}", h.Weapons.ByCaliber)
		r.Get("/weapons/by-owner/{owner}", h.Weapons.ByOwner)
		r.Get("/weapons/{id}", h.Weapons.Get)

		r.Get("/competitions", h.Competitions.List)
		r.Get("/competitions/ranking", h.Competitions.Ranking)
		r.Get("/competitions/stats", h.Competitions.Stats)
		r.Get("/competitions/{id}/scores", h.Competitions.Scores)
		r.Get("/competitions/{id}/evolution", h.Competitions.Evolution)
	})

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Authenticator, deps.Logger))

		r.Get("/auth/profile", h.Auth.Profile)
		r.Put("/auth/profile", h.Auth.UpdateProfile)
		r.Post("/auth/change-password", h.Auth.ChangePassword)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/progress", h.Progress.MyProgress)
		r.Get("/progress/next-level", h.Progress.MyNextLevel)
		r.Post("/progress/update", h.Progress.Recompute)
		r.Post("/levels", h.Progress.CreateLevel)

		r.Post("/weapons", h.Weapons.Create)
		r.Put("/weapons/{id}", h.Weapons.Update)
		r.Delete("/weapons/{id}", h.Weapons.Delete)

		r.Post("/competitions", h.Competitions.Create)
		r.Post("/competitions/{id}/scores", h.Competitions.AddScore)

		r.Route("/training-sessions", func(r chi.Router) {
			r.Get("/", h.Training.List)
			r.Post("/", h.Training.Create)
			r.Get("/stats", h.Training.Stats)
			r.Get("/recent", h.Training.Recent)
			r.Get("/{id}", h.Training.Get)
			r.Put("/{id}", h.Training.Update)
			r.Delete("/{id}", h.Training.Delete)
		})
	})
}
