package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const sessionSelect = `
	SELECT ts.id, ts.user_id, ts.weapon_id, w.name || ' - ' || w.caliber,
		ts.shots_fired, ts.hits, ts.score, COALESCE(ts.notes, ''), ts.duration_minutes,
		ts.date, ts.created_at, ts.updated_at
	FROM training_sessions ts
	JOIN weapons w ON w.id = ts.weapon_id`

type TrainingSessionRepository struct {
	q database.Querier
}

func NewTrainingSessionRepository(db *database.DB) *TrainingSessionRepository {
	return &TrainingSessionRepository{q: db.Pool}
}

func scanSessionRow(scanner rowScanner) (*models.TrainingSession, error) {
	var s models.TrainingSession
	err := scanner.Scan(
		&s.ID, &s.UserID, &s.WeaponID, &s.WeaponName,
		&s.ShotsFired, &s.Hits, &s.Score, &s.Notes, &s.DurationMinutes,
		&s.Date, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

// listSessionsByUser returns the full history of a member, oldest first.
func listSessionsByUser(ctx context.Context, q database.Querier, userID string) ([]*models.TrainingSession, error) {
	rows, err := q.Query(ctx, sessionSelect+`
		WHERE ts.user_id = $1
		ORDER BY ts.date, ts.created_at, ts.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query training sessions: %w", err)
	}
	return collect(rows, scanSessionRow)
}

// List returns one page of a member's sessions, newest first, and the total
// number of matching sessions.
func (r *TrainingSessionRepository) List(ctx context.Context, f models.TrainingSessionFilter) ([]*models.TrainingSession, int, error) {
	where := `WHERE ts.user_id = $1`
	args := []any{f.UserID}
	if f.WeaponID != "" {
		args = append(args, f.WeaponID)
		where += ` AND ts.weapon_id = $2`
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM training_sessions ts ` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count training sessions: %w", database.MapPostgresError(err))
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`%s %s ORDER BY ts.date DESC, ts.created_at DESC, ts.id LIMIT $%d OFFSET $%d`,
		sessionSelect, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query training sessions: %w", database.MapPostgresError(err))
	}
	sessions, err := collect(rows, scanSessionRow)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *TrainingSessionRepository) Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error) {
	rows, err := r.q.Query(ctx, sessionSelect+`
		WHERE ts.user_id = $1
		ORDER BY ts.date DESC, ts.created_at DESC, ts.id
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	return collect(rows, scanSessionRow)
}

// GetByID returns the session only when it belongs to userID.
func (r *TrainingSessionRepository) GetByID(ctx context.Context, userID, id string) (*models.TrainingSession, error) {
	return scanSessionRow(r.q.QueryRow(ctx, sessionSelect+` WHERE ts.id = $1 AND ts.user_id = $2`, id, userID))
}

func (r *TrainingSessionRepository) Create(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error) {
	query := `
		WITH ts AS (
			INSERT INTO training_sessions (user_id, weapon_id, shots_fired, hits, score, notes, duration_minutes, date)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
			RETURNING *
		)
		SELECT ts.id, ts.user_id, ts.weapon_id, w.name || ' - ' || w.caliber,
			ts.shots_fired, ts.hits, ts.score, COALESCE(ts.notes, ''), ts.duration_minutes,
			ts.date, ts.created_at, ts.updated_at
		FROM ts JOIN weapons w ON w.id = ts.weapon_id`

	return scanSessionRow(r.q.QueryRow(ctx, query,
		s.UserID, s.WeaponID, s.ShotsFired, s.Hits, s.Score, s.Notes, s.DurationMinutes, s.Date,
	))
}

// Update overwrites the recorded values of a session owned by s.UserID.
func (r *TrainingSessionRepository) Update(ctx context.Context, s *models.TrainingSession) (*models.TrainingSession, error) {
	query := `
		WITH ts AS (
			UPDATE training_sessions
			SET weapon_id = $3, shots_fired = $4, hits = $5, score = $6,
				notes = NULLIF($7, ''), duration_minutes = $8, date = $9, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING *
		)
		SELECT ts.id, ts.user_id, ts.weapon_id, w.name || ' - ' || w.caliber,
			ts.shots_fired, ts.hits, ts.score, COALESCE(ts.notes, ''), ts.duration_minutes,
			ts.date, ts.created_at, ts.updated_at
		FROM ts JOIN weapons w ON w.id = ts.weapon_id`

	return scanSessionRow(r.q.QueryRow(ctx, query,
		s.ID, s.UserID, s.WeaponID, s.ShotsFired, s.Hits, s.Score, s.Notes, s.DurationMinutes, s.Date,
	))
}

func (r *TrainingSessionRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM training_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TrainingSessionRepository) Totals(ctx context.Context, userID string) (*models.TrainingTotals, error) {
	var t models.TrainingTotals
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(shots_fired), 0), COALESCE(SUM(hits), 0), COALESCE(AVG(score), 0)
		FROM training_sessions WHERE user_id = $1`, userID,
	).Scan(&t.Sessions, &t.Shots, &t.Hits, &t.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("failed to total training sessions: %w", database.MapPostgresError(err))
	}
	return &t, nil
}

// StatsByWeapon breaks a member's history down per weapon used.
func (r *TrainingSessionRepository) StatsByWeapon(ctx context.Context, userID string) ([]*models.WeaponTrainingStats, error) {
	rows, err := r.q.Query(ctx, `
		SELECT w.name, w.caliber, COUNT(ts.id), COALESCE(SUM(ts.shots_fired), 0),
			COALESCE(SUM(ts.hits), 0), COALESCE(AVG(ts.score), 0)
		FROM training_sessions ts
		JOIN weapons w ON w.id = ts.weapon_id
		WHERE ts.user_id = $1
		GROUP BY w.id, w.name, w.caliber
		ORDER BY w.name, w.caliber`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weapon stats: %w", err)
	}
	return collect(rows, func(s rowScanner) (*models.WeaponTrainingStats, error) {
		var ws models.WeaponTrainingStats
		if err := s.Scan(&ws.WeaponName, &ws.Caliber, &ws.Sessions, &ws.Shots, &ws.Hits, &ws.AvgScore); err != nil {
			return nil, err
		}
		return &ws, nil
	})
}
