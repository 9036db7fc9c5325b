package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/models"
)

const competitionColumns = `id, name, COALESCE(description, ''), created_at`

const scoreSelect = `
	SELECT s.id, s.competition_id, c.name, s.user_id, s.score, s.stage, s.date,
		COALESCE(s.notes, ''), s.created_at
	FROM competition_scores s
	JOIN competitions c ON c.id = s.competition_id`

type CompetitionRepository struct {
	q database.Querier
}

func NewCompetitionRepository(db *database.DB) *CompetitionRepository {
	return &CompetitionRepository{q: db.Pool}
}

func scanCompetitionRow(scanner rowScanner) (*models.Competition, error) {
	var c models.Competition
	if err := scanner.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func scanScoreRow(scanner rowScanner) (*models.CompetitionScore, error) {
	var s models.CompetitionScore
	err := scanner.Scan(&s.ID, &s.CompetitionID, &s.CompetitionName, &s.UserID,
		&s.Score, &s.Stage, &s.Date, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]*models.Competition, error) {
	rows, err := r.q.Query(ctx, `SELECT `+competitionColumns+` FROM competitions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitions: %w", err)
	}
	return collect(rows, scanCompetitionRow)
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id string) (*models.Competition, error) {
	return scanCompetitionRow(r.q.QueryRow(ctx, `SELECT `+competitionColumns+` FROM competitions WHERE id = $1`, id))
}

func (r *CompetitionRepository) Create(ctx context.Context, c *models.Competition) (*models.Competition, error) {
	query := `INSERT INTO competitions (name, description) VALUES ($1, NULLIF($2, '')) RETURNING ` + competitionColumns
	return scanCompetitionRow(r.q.QueryRow(ctx, query, c.Name, c.Description))
}

func (r *CompetitionRepository) AddScore(ctx context.Context, s *models.CompetitionScore) (*models.CompetitionScore, error) {
	query := `
		WITH s AS (
			INSERT INTO competition_scores (competition_id, user_id, score, stage, date, notes)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING *
		)
		SELECT s.id, s.competition_id, c.name, s.user_id, s.score, s.stage, s.date,
			COALESCE(s.notes, ''), s.created_at
		FROM s JOIN competitions c ON c.id = s.competition_id`

	return scanScoreRow(r.q.QueryRow(ctx, query, s.CompetitionID, s.UserID, s.Score, s.Stage, s.Date, s.Notes))
}

// ListScores returns a competition's scores. newestFirst selects the order
// by date.
func (r *CompetitionRepository) ListScores(ctx context.Context, competitionID string, newestFirst bool) ([]*models.CompetitionScore, error) {
	order := `ORDER BY s.date, s.created_at, s.id`
	if newestFirst {
		order = `ORDER BY s.date DESC, s.created_at DESC, s.id`
	}

	rows, err := r.q.Query(ctx, scoreSelect+` WHERE s.competition_id = $1 `+order, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query competition scores: %w", err)
	}
	return collect(rows, scanScoreRow)
}

// Ranking returns every score ordered by competition name, newest first
// within a competition.
func (r *CompetitionRepository) Ranking(ctx context.Context) ([]*models.CompetitionScore, error) {
	rows, err := r.q.Query(ctx, scoreSelect+` ORDER BY c.name, s.date DESC, s.created_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	return collect(rows, scanScoreRow)
}

func (r *CompetitionRepository) Stats(ctx context.Context) (*models.CompetitionStats, error) {
	var st models.CompetitionStats

	err := r.q.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM competitions),
			COUNT(*), COALESCE(AVG(score), 0)
		FROM competition_scores`,
	).Scan(&st.TotalCompetitions, &st.TotalScores, &st.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("failed to query competition totals: %w", err)
	}

	if st.TotalScores == 0 {
		return &st, nil
	}

	var bestName string
	err = r.q.QueryRow(ctx, `
		SELECT s.score, c.name FROM competition_scores s
		JOIN competitions c ON c.id = s.competition_id
		ORDER BY s.score DESC, s.date, s.id
		LIMIT 1`,
	).Scan(&st.BestScore, &bestName)
	if err != nil {
		return nil, fmt.Errorf("failed to query best score: %w", database.MapPostgresError(err))
	}
	st.BestScoreCompetition = &bestName

	var activeName string
	err = r.q.QueryRow(ctx, `
		SELECT c.name, COUNT(s.id) AS participations FROM competition_scores s
		JOIN competitions c ON c.id = s.competition_id
		GROUP BY c.id, c.name
		ORDER BY participations DESC, c.name
		LIMIT 1`,
	).Scan(&activeName, &st.MostActiveCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query most active competition: %w", database.MapPostgresError(err))
	}
	st.MostActiveCompetition = &activeName

	return &st, nil
}
