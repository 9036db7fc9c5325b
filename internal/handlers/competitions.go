package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

type CompetitionService interface {
	List(ctx context.Context) ([]*models.Competition, error)
	Create(ctx context.Context, name, description string) (*models.Competition, error)
	Scores(ctx context.Context, competitionID string) (*services.CompetitionScores, error)
	Evolution(ctx context.Context, competitionID string) (*services.CompetitionScores, error)
	AddScore(ctx context.Context, userID, competitionID string, in services.ScoreInput) (*models.CompetitionScore, error)
	Ranking(ctx context.Context) ([]services.RankingGroup, error)
	Stats(ctx context.Context) (*models.CompetitionStats, error)
}

type CompetitionHandler struct {
	service CompetitionService
}

func NewCompetitionHandler(service CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{service: service}
}

type CreateCompetitionRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// Stage accepts either a JSON string or a number ("2" and 2 are the same stage).
type Stage string

func (s *Stage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Stage(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("stage must be a string or a number")
	}
	*s = Stage(n.String())
	return nil
}

type AddScoreRequest struct {
	Score float64 `json:"score"`
	Stage Stage   `json:"stage"`
	Notes string  `json:"notes" validate:"max=2000"`
	Date  string  `json:"date"`
}

type CompetitionScoresResponse struct {
	Competition CompetitionResponse `json:"competition"`
	Scores      []ScoreResponse     `json:"scores"`
}

type evolutionPointJSON struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
}

type CompetitionEvolutionResponse struct {
	Competition CompetitionResponse  `json:"competition"`
	Evolution   []evolutionPointJSON `json:"evolution"`
}

type rankingEntryJSON struct {
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
	Date  string  `json:"date"`
}

type rankingGroupJSON struct {
	Competition string             `json:"competition"`
	Scores      []rankingEntryJSON `json:"scores"`
}

type namedScoreJSON struct {
	Score       float64 `json:"score"`
	Competition *string `json:"competition"`
}

type mostActiveJSON struct {
	Name           *string `json:"name"`
	Participations int     `json:"participations"`
}

type CompetitionStatsResponse struct {
	TotalCompetitions     int            `json:"total_competitions"`
	TotalScores           int            `json:"total_scores"`
	AverageScore          float64        `json:"average_score"`
	BestScore             namedScoreJSON `json:"best_score"`
	MostActiveCompetition mostActiveJSON `json:"most_active_competition"`
}

func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	comps, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}

	out := make([]CompetitionResponse, 0, len(comps))
	for _, c := range comps {
		out = append(out, toCompetitionResponse(c))
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"competitions": out})
}

func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompetitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comp, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Competition already exists")
			return
		}
		writeServiceError(w, err, "Competition not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, toCompetitionResponse(comp))
}

func (h *CompetitionHandler) Scores(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.Scores(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, CompetitionScoresResponse{
		Competition: toCompetitionResponse(res.Competition),
		Scores:      toScoreResponses(res.Scores),
	})
}

func (h *CompetitionHandler) Evolution(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	res, err := h.service.Evolution(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}

	points := make([]evolutionPointJSON, 0, len(res.Scores))
	for _, s := range res.Scores {
		points = append(points, evolutionPointJSON{Date: formatDate(s.Date), Score: s.Score, Stage: s.Stage})
	}
	pkghttp.WriteJSON(w, http.StatusOK, CompetitionEvolutionResponse{
		Competition: toCompetitionResponse(res.Competition),
		Evolution:   points,
	})
}

// AddScore handles POST /competitions/{id}/scores. The score belongs to the caller.
func (h *CompetitionHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req AddScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	score, err := h.service.AddScore(r.Context(), caller.ID, id, services.ScoreInput{
		Score: req.Score,
		Stage: strings.TrimSpace(string(req.Stage)),
		Notes: req.Notes,
		Date:  date,
	})
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, toScoreResponse(score))
}

func (h *CompetitionHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Ranking(r.Context())
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}

	out := make([]rankingGroupJSON, 0, len(groups))
	for _, g := range groups {
		entries := make([]rankingEntryJSON, 0, len(g.Scores))
		for _, s := range g.Scores {
			entries = append(entries, rankingEntryJSON{Score: s.Score, Stage: s.Stage, Date: formatDate(s.Date)})
		}
		out = append(out, rankingGroupJSON{Competition: g.Competition, Scores: entries})
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"ranking": out})
}

func (h *CompetitionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, "Competition not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, CompetitionStatsResponse{
		TotalCompetitions: st.TotalCompetitions,
		TotalScores:       st.TotalScores,
		AverageScore:      st.AverageScore,
		BestScore:         namedScoreJSON{Score: st.BestScore, Competition: st.BestScoreCompetition},
		MostActiveCompetition: mostActiveJSON{
			Name:           st.MostActiveCompetition,
			Participations: st.MostActiveCount,
		},
	})
}
