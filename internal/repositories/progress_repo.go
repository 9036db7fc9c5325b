package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const snapshotColumns = `id, user_id, current_level_id, total_sessions, total_shots,
	total_hits, average_score, last_session_date, updated_at`

// ProgressTx is the set of reads and writes a recompute performs inside one
// transaction.
type ProgressTx interface {
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.TrainingSession, error)
	ListLevels(ctx context.Context) ([]*models.Level, error)
	// GetSnapshotForUpdate locks the member's snapshot row until commit.
	GetSnapshotForUpdate(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot *models.ProgressSnapshot) (*models.ProgressSnapshot, error)
}

type ProgressRepository struct {
	db *database.DB
}

func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func scanSnapshotRow(scanner rowScanner) (*models.ProgressSnapshot, error) {
	var p models.ProgressSnapshot
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.CurrentLevelID, &p.TotalSessions, &p.TotalShots,
		&p.TotalHits, &p.AverageScore, &p.LastSessionDate, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

// GetByUserID returns the stored snapshot with its current level attached.
func (r *ProgressRepository) GetByUserID(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	query := `
		SELECT p.id, p.user_id, p.current_level_id, p.total_sessions, p.total_shots,
			p.total_hits, p.average_score, p.last_session_date, p.updated_at,
			l.id, l.name, l.message, l.min_score, l."order", l.created_at
		FROM user_progress p
		LEFT JOIN levels l ON l.id = p.current_level_id
		WHERE p.user_id = $1`

	var p models.ProgressSnapshot
	var lvl struct {
		id, name, message *string
		minScore          *float64
		order             *int
		createdAt         *time.Time
	}
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.CurrentLevelID, &p.TotalSessions, &p.TotalShots,
		&p.TotalHits, &p.AverageScore, &p.LastSessionDate, &p.UpdatedAt,
		&lvl.id, &lvl.name, &lvl.message, &lvl.minScore, &lvl.order, &lvl.createdAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if lvl.id != nil {
		p.CurrentLevel = &models.Level{
			ID:        *lvl.id,
			Name:      *lvl.name,
			Message:   *lvl.message,
			MinScore:  *lvl.minScore,
			Order:     *lvl.order,
			CreatedAt: *lvl.createdAt,
		}
	}
	return &p, nil
}

// InTx runs fn against a transaction-bound view of the progress tables.
func (r *ProgressRepository) InTx(ctx context.Context, fn func(tx ProgressTx) error) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&progressTx{q: tx})
	})
}

type progressTx struct {
	q database.Querier
}

func (t *progressTx) ListSessionsByUser(ctx context.Context, userID string) ([]*models.TrainingSession, error) {
	return listSessionsByUser(ctx, t.q, userID)
}

func (t *progressTx) ListLevels(ctx context.Context) ([]*models.Level, error) {
	return listLevels(ctx, t.q)
}

func (t *progressTx) GetSnapshotForUpdate(ctx context.Context, userID string) (*models.ProgressSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM user_progress WHERE user_id = $1 FOR UPDATE`
	return scanSnapshotRow(t.q.QueryRow(ctx, query, userID))
}

// UpsertSnapshot writes the one row per member, creating it on first use.
func (t *progressTx) UpsertSnapshot(ctx context.Context, s *models.ProgressSnapshot) (*models.ProgressSnapshot, error) {
	query := `
		INSERT INTO user_progress (user_id, current_level_id, total_sessions, total_shots, total_hits, average_score, last_session_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			current_level_id = EXCLUDED.current_level_id,
			total_sessions = EXCLUDED.total_sessions,
			total_shots = EXCLUDED.total_shots,
			total_hits = EXCLUDED.total_hits,
			average_score = EXCLUDED.average_score,
			last_session_date = EXCLUDED.last_session_date,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + snapshotColumns

	return scanSnapshotRow(t.q.QueryRow(ctx, query,
		s.UserID, s.CurrentLevelID, s.TotalSessions, s.TotalShots, s.TotalHits,
		s.AverageScore, s.LastSessionDate,
	))
}
