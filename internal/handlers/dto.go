package handlers

import (
	"time"

	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/progress"
	"github.com/BradenHooton/tiro/internal/services"
)

// UserResponse is the public view of an account. The password hash is
// never serialised.
type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	RegistrationNumber string     `json:"registration_number"`
	Club               string     `json:"club"`
	Category           string     `json:"category"`
	IsActive           bool       `json:"is_active"`
	IsAdmin            bool       `json:"is_admin"`
	LastLogin          *time.Time `json:"last_login"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FullName:           u.FullName,
		Phone:              u.Phone,
		RegistrationNumber: u.RegistrationNumber,
		Club:               u.Club,
		Category:           u.Category,
		IsActive:           u.IsActive,
		IsAdmin:            u.IsAdmin,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

func toAuthResponse(message string, res *services.AuthResult) AuthResponse {
	return AuthResponse{
		Message:   message,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	}
}

type LevelResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Message  string  `json:"message"`
	MinScore float64 `json:"min_score"`
	Order    int     `json:"order"`
}

func toLevelResponse(l *models.Level) *LevelResponse {
	if l == nil {
		return nil
	}
	return &LevelResponse{ID: l.ID, Name: l.Name, Message: l.Message, MinScore: l.MinScore, Order: l.Order}
}

type ProgressResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	CurrentLevel    *LevelResponse `json:"current_level"`
	TotalSessions   int            `json:"total_sessions"`
	TotalShots      int            `json:"total_shots"`
	TotalHits       int            `json:"total_hits"`
	Accuracy        float64        `json:"accuracy"`
	AverageScore    float64        `json:"average_score"`
	LastSessionDate *string        `json:"last_session_date"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toProgressResponse(p *models.ProgressSnapshot) ProgressResponse {
	return ProgressResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		CurrentLevel:    toLevelResponse(p.CurrentLevel),
		TotalSessions:   p.TotalSessions,
		TotalShots:      p.TotalShots,
		TotalHits:       p.TotalHits,
		Accuracy:        p.Accuracy(),
		AverageScore:    p.AverageScore,
		LastSessionDate: formatDatePtr(p.LastSessionDate),
		UpdatedAt:       p.UpdatedAt,
	}
}

type NextLevelResponse struct {
	CurrentLevel       *LevelResponse `json:"current_level"`
	NextLevel          *LevelResponse `json:"next_level"`
	ScoreNeeded        float64        `json:"score_needed"`
	ProgressPercentage float64        `json:"progress_percentage"`
	IsMaxLevel         bool           `json:"is_max_level"`
}

func toNextLevelResponse(p *progress.Projection) NextLevelResponse {
	return NextLevelResponse{
		CurrentLevel:       toLevelResponse(p.Current),
		NextLevel:          toLevelResponse(p.Next),
		ScoreNeeded:        p.ScoreNeeded,
		ProgressPercentage: p.ProgressPercentage,
		IsMaxLevel:         p.IsMaxLevel,
	}
}

type TrainingSessionResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	WeaponID        string    `json:"weapon_id"`
	WeaponName      string    `json:"weapon_name"`
	ShotsFired      int       `json:"shots_fired"`
	Hits            int       `json:"hits"`
	Accuracy        float64   `json:"accuracy"`
	Score           float64   `json:"score"`
	Notes           string    `json:"notes"`
	DurationMinutes *int      `json:"duration_minutes"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toSessionResponse(s *models.TrainingSession) TrainingSessionResponse {
	return TrainingSessionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		WeaponID:        s.WeaponID,
		WeaponName:      s.WeaponName,
		ShotsFired:      s.ShotsFired,
		Hits:            s.Hits,
		Accuracy:        s.Accuracy(),
		Score:           s.Score,
		Notes:           s.Notes,
		DurationMinutes: s.DurationMinutes,
		Date:            formatDate(s.Date),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toSessionResponses(sessions []*models.TrainingSession) []TrainingSessionResponse {
	out := make([]TrainingSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

type WeaponResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Caliber   string    `json:"caliber"`
	Owner     string    `json:"owner"`
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWeaponResponse(w *models.Weapon) WeaponResponse {
	return WeaponResponse{
		ID:        w.ID,
		Name:      w.Name,
		Caliber:   w.Caliber,
		Owner:     w.Owner,
		UserID:    w.UserID,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toWeaponResponses(weapons []*models.Weapon) []WeaponResponse {
	out := make([]WeaponResponse, 0, len(weapons))
	for _, w := range weapons {
		out = append(out, toWeaponResponse(w))
	}
	return out
}

type CompetitionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCompetitionResponse(c *models.Competition) CompetitionResponse {
	return CompetitionResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

type ScoreResponse struct {
	ID              string    `json:"id"`
	CompetitionID   string    `json:"competition_id"`
	CompetitionName string    `json:"competition_name"`
	UserID          string    `json:"user_id"`
	Score           float64   `json:"score"`
	Stage           string    `json:"stage"`
	Date            string    `json:"date"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func toScoreResponse(s *models.CompetitionScore) ScoreResponse {
	return ScoreResponse{
		ID:              s.ID,
		CompetitionID:   s.CompetitionID,
		CompetitionName: s.CompetitionName,
		UserID:          s.UserID,
		Score:           s.Score,
		Stage:           s.Stage,
		Date:            formatDate(s.Date),
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
	}
}

func toScoreResponses(scores []*models.CompetitionScore) []ScoreResponse {
	out := make([]ScoreResponse, 0, len(scores))
	for _, s := range scores {
		out = append(out, toScoreResponse(s))
	}
	return out
}
