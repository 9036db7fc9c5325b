package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const weaponColumns = `id, name, caliber, owner, user_id, created_at, updated_at`

type WeaponRepository struct {
	q database.Querier
}

func NewWeaponRepository(db *database.DB) *WeaponRepository {
	return &WeaponRepository{q: db.Pool}
}

func scanWeaponRow(scanner rowScanner) (*models.Weapon, error) {
	var w models.Weapon
	if err := scanner.Scan(&w.ID, &w.Name, &w.Caliber, &w.Owner, &w.UserID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &w, nil
}

func (r *WeaponRepository) query(ctx context.Context, where string, args ...any) ([]*models.Weapon, error) {
	query := `SELECT ` + weaponColumns + ` FROM weapons ` + where + ` ORDER BY name, caliber, id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weapons: %w", err)
	}
	return collect(rows, scanWeaponRow)
}

func (r *WeaponRepository) List(ctx context.Context) ([]*models.Weapon, error) {
	return r.query(ctx, "")
}

func (r *WeaponRepository) ListByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error) {
	return r.query(ctx, "WHERE caliber = $1", caliber)
}

func (r *WeaponRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Weapon, error) {
	return r.query(ctx, "WHERE owner = $1", owner)
}

func (r *WeaponRepository) GetByID(ctx context.Context, id string) (*models.Weapon, error) {
	return scanWeaponRow(r.q.QueryRow(ctx, `SELECT `+weaponColumns+` FROM weapons WHERE id = $1`, id))
}

func (r *WeaponRepository) Create(ctx context.Context, w *models.Weapon) (*models.Weapon, error) {
	query := `
		INSERT INTO weapons (name, caliber, owner, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + weaponColumns
	return scanWeaponRow(r.q.QueryRow(ctx, query, w.Name, w.Caliber, w.Owner, w.UserID))
}

// Update replaces the descriptive fields. The registering member is kept.
func (r *WeaponRepository) Update(ctx context.Context, w *models.Weapon) (*models.Weapon, error) {
	query := `
		UPDATE weapons SET name = $2, caliber = $3, owner = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + weaponColumns
	return scanWeaponRow(r.q.QueryRow(ctx, query, w.ID, w.Name, w.Caliber, w.Owner))
}

func (r *WeaponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM weapons WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats counts the arsenal grouped by caliber and by owner.
func (r *WeaponRepository) Stats(ctx context.Context) (*models.WeaponStats, error) {
	stats := &models.WeaponStats{
		ByCaliber: make(map[string]int),
		ByOwner:   make(map[string]int),
	}

	query := `
		SELECT 'caliber', caliber, COUNT(*) FROM weapons GROUP BY caliber
		UNION ALL
		SELECT 'owner', owner, COUNT(*) FROM weapons GROUP BY owner`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query weapon stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, key string
		var count int
		if err := rows.Scan(&kind, &key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan weapon stats: %w", err)
		}
		if kind == "caliber" {
			stats.ByCaliber[key] = count
			stats.Total += count
		} else {
			stats.ByOwner[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weapon stats: %w", err)
	}

	return stats, nil
}
