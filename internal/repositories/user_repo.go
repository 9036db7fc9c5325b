package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const userColumns = `id, username, email, password_hash,
	COALESCE(full_name, ''), COALESCE(phone, ''), COALESCE(registration_number, ''),
	COALESCE(club, ''), COALESCE(category, ''),
	is_active, is_admin, last_login, created_at, updated_at`

type UserRepository struct {
	q database.Querier
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Phone, &user.RegistrationNumber,
		&user.Club, &user.Category,
		&user.IsActive, &user.IsAdmin, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

// mapUserConflict tells a duplicate username apart from a duplicate email.
func mapUserConflict(err error) error {
	mapped := database.MapPostgresError(err)
	if !errors.Is(mapped, models.ErrConflict) {
		return mapped
	}
	if strings.Contains(database.ConstraintName(err), "username") {
		return models.ErrUsernameTaken
	}
	return models.ErrEmailTaken
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.q.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.q.QueryRow(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUserRow(r.q.QueryRow(ctx, query, email))
}

// GetByLogin finds an account by username or email. An exact username match
// wins over an email match.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE username = $1 OR email = lower($1)
		ORDER BY (username = $1) DESC
		LIMIT 1`
	return scanUserRow(r.q.QueryRow(ctx, query, login))
}

// Create inserts the account together with its password hash.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, phone, registration_number, club, category, is_active, is_admin)
		VALUES ($1, lower($2), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.q.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.FullName, user.Phone, user.RegistrationNumber, user.Club, user.Category,
		user.IsActive, user.IsAdmin,
	))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return created, nil
}

// UpdateProfile sets the non-nil fields of update. Empty strings clear the
// column.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error) {
	fields := []struct {
		column string
		value  *string
	}{
		{"full_name", update.FullName},
		{"email", update.Email},
		{"phone", update.Phone},
		{"registration_number", update.RegistrationNumber},
		{"club", update.Club},
		{"category", update.Category},
	}

	sets := make([]string, 0, len(fields)+1)
	args := []any{id}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		args = append(args, *f.value)
		if f.column == "email" {
			sets = append(sets, fmt.Sprintf("email = lower($%d)", len(args)))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = NULLIF($%d, '')", f.column, len(args)))
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUserRow(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapUserConflict(err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", database.MapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", database.MapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
