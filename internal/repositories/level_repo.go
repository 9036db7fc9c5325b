package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const levelColumns = `id, name, message, min_score, "order", created_at`

type LevelRepository struct {
	q database.Querier
}

func NewLevelRepository(db *database.DB) *LevelRepository {
	return &LevelRepository{q: db.Pool}
}

func scanLevelRow(scanner rowScanner) (*models.Level, error) {
	var l models.Level
	if err := scanner.Scan(&l.ID, &l.Name, &l.Message, &l.MinScore, &l.Order, &l.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &l, nil
}

func listLevels(ctx context.Context, q database.Querier) ([]*models.Level, error) {
	rows, err := q.Query(ctx, `SELECT `+levelColumns+` FROM levels ORDER BY "order", min_score, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	return collect(rows, scanLevelRow)
}

// List returns the ladder in ascending order.
func (r *LevelRepository) List(ctx context.Context) ([]*models.Level, error) {
	return listLevels(ctx, r.q)
}

func (r *LevelRepository) GetByID(ctx context.Context, id string) (*models.Level, error) {
	return scanLevelRow(r.q.QueryRow(ctx, `SELECT `+levelColumns+` FROM levels WHERE id = $1`, id))
}

func (r *LevelRepository) Create(ctx context.Context, level *models.Level) (*models.Level, error) {
	query := `
		INSERT INTO levels (name, message, min_score, "order")
		VALUES ($1, $2, $3, $4)
		RETURNING ` + levelColumns

	return scanLevelRow(r.q.QueryRow(ctx, query, level.Name, level.Message, level.MinScore, level.Order))
}
