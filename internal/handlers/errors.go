package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
	pkgauth "github.com/BradenHooton/tiro/pkg/auth"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

const dateLayout = "2006-01-02"

// writeServiceError maps a service error to its HTTP response. notFound is
// the message used for a bare models.ErrNotFound.
func writeServiceError(w http.ResponseWriter, err error, notFound string) {
	var vErr *models.ValidationError
	var pwErr *pkgauth.PasswordValidationError

	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteBadRequest(w, vErr.Message)
	case errors.As(err, &pwErr):
		pkghttp.WriteBadRequest(w, pwErr.Reason)
	case errors.Is(err, models.ErrUsernameTaken):
		pkghttp.WriteConflict(w, "Username already exists")
	case errors.Is(err, models.ErrEmailTaken):
		pkghttp.WriteConflict(w, "Email already registered")
	case errors.Is(err, models.ErrInvalidEmail):
		pkghttp.WriteBadRequest(w, "Invalid email address")
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Invalid credentials")
	case errors.Is(err, models.ErrAccountDisabled):
		pkghttp.WriteUnauthorized(w, "Account is disabled")
	case errors.Is(err, models.ErrWrongPassword):
		pkghttp.WriteBadRequest(w, "Current password is incorrect")
	case errors.Is(err, models.ErrWeaponNotFound):
		pkghttp.WriteNotFound(w, "Weapon not found")
	case errors.Is(err, models.ErrWeaponInUse):
		pkghttp.WriteConflict(w, "Weapon has training sessions and cannot be deleted")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFound)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication required")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the caller may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := pkghttp.DecodeJSON(r, dst); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// idParam returns the named URL parameter when it is a valid UUID.
func idParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid "+name)
		return "", false
	}
	return id.String(), true
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, models.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func requestMeta(r *http.Request, ips *pkghttp.IPResolver) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: ips.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
