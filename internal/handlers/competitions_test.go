package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
)

func TestStage_UnmarshalJSON(t *testing.T) {
	for raw, want := range map[string]Stage{`"2"`: "2", `3`: "3", `null`: "", `"Final"`: "Final"} {
		var s Stage
		require.NoError(t, json.Unmarshal([]byte(raw), &s), raw)
		assert.Equal(t, want, s)
	}

	var s Stage
	assert.Error(t, json.Unmarshal([]byte(`{}`), &s))
}

func TestCompetitionAddScore(t *testing.T) {
	var gotUser, gotComp string
	var got services.ScoreInput
	h := NewCompetitionHandler(&MockCompetitionService{
		AddScoreFunc: func(ctx context.Context, userID, compID string, in services.ScoreInput) (*models.CompetitionScore, error) {
			gotUser, gotComp, got = userID, compID, in
			return &models.CompetitionScore{ID: "sc1", CompetitionID: compID, UserID: userID, Score: in.Score, Stage: in.Stage, Date: *in.Date}, nil
		},
	})

	req := withURLParams(withCaller(newTestRequest(t, http.MethodPost, "/", `{"score":95.5,"stage":2,"date":"2024-06-02"}`)), "id", testCompID)
	w := httptest.NewRecorder()
	h.AddScore(w, req)

	var resp ScoreResponse
	assertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, testUserID, gotUser)
	assert.Equal(t, testCompID, gotComp)
	assert.Equal(t, "2", got.Stage)
	assert.Equal(t, "2024-06-02", resp.Date)
}

func TestCompetitionCreate_Conflict(t *testing.T) {
	h := NewCompetitionHandler(&MockCompetitionService{
		CreateFunc: func(ctx context.Context, name, description string) (*models.Competition, error) {
			return nil, models.ErrConflict
		},
	})

	w := httptest.NewRecorder()
	h.Create(w, newTestRequest(t, http.MethodPost, "/api/competitions", CreateCompetitionRequest{Name: "Copa Brasil"}))
	assertErrorResponse(t, w, http.StatusConflict, "conflict", "Competition already exists")
}

func TestCompetitionScoresAndEvolution(t *testing.T) {
	comp := &models.Competition{ID: testCompID, Name: "Copa Brasil"}
	scores := []*models.CompetitionScore{
		{ID: "a", Score: 80, Stage: "1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Score: 90, Stage: "2", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	h := NewCompetitionHandler(&MockCompetitionService{
		ScoresFunc: func(ctx context.Context, id string) (*services.CompetitionScores, error) {
			return &services.CompetitionScores{Competition: comp, Scores: scores}, nil
		},
		EvolutionFunc: func(ctx context.Context, id string) (*services.CompetitionScores, error) {
			return &services.CompetitionScores{Competition: comp, Scores: scores}, nil
		},
	})

	w := httptest.NewRecorder()
	h.Scores(w, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", testCompID))
	var sr CompetitionScoresResponse
	assertJSONResponse(t, w, http.StatusOK, &sr)
	assert.Len(t, sr.Scores, 2)

	w = httptest.NewRecorder()
	h.Evolution(w, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", testCompID))
	var er CompetitionEvolutionResponse
	assertJSONResponse(t, w, http.StatusOK, &er)
	require.Len(t, er.Evolution, 2)
	assert.Equal(t, "2024-01-01", er.Evolution[0].Date)

	h = NewCompetitionHandler(&MockCompetitionService{})
	w = httptest.NewRecorder()
	h.Scores(w, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", testCompID))
	assertErrorResponse(t, w, http.StatusNotFound, "not_found", "Competition not found")
}

func TestCompetitionRankingAndStats(t *testing.T) {
	best := "Copa Brasil"
	h := NewCompetitionHandler(&MockCompetitionService{
		RankingFunc: func(ctx context.Context) ([]services.RankingGroup, error) {
			return []services.RankingGroup{{Competition: "Copa Brasil", Scores: []*models.CompetitionScore{{Score: 90, Stage: "1"}}}}, nil
		},
		StatsFunc: func(ctx context.Context) (*models.CompetitionStats, error) {
			return &models.CompetitionStats{TotalCompetitions: 1, TotalScores: 1, AverageScore: 90, BestScore: 90,
				BestScoreCompetition: &best, MostActiveCompetition: &best, MostActiveCount: 1}, nil
		},
	})

	w := httptest.NewRecorder()
	h.Ranking(w, httptest.NewRequest(http.MethodGet, "/api/competitions/ranking", nil))
	var rr struct {
		Ranking []rankingGroupJSON `json:"ranking"`
	}
	assertJSONResponse(t, w, http.StatusOK, &rr)
	require.Len(t, rr.Ranking, 1)
	assert.Equal(t, "Copa Brasil", rr.Ranking[0].Competition)

	w = httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/competitions/stats", nil))
	var st CompetitionStatsResponse
	assertJSONResponse(t, w, http.StatusOK, &st)
	assert.Equal(t, "Copa Brasil", *st.BestScore.Competition)
	assert.Equal(t, 1, st.MostActiveCompetition.Participations)
}

func TestCompetitionStats_Empty(t *testing.T) {
	h := NewCompetitionHandler(&MockCompetitionService{})

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/competitions/stats", nil))
	assert.JSONEq(t, `{
		"total_competitions": 0, "total_scores": 0, "average_score": 0,
		"best_score": {"score": 0, "competition": null},
		"most_active_competition": {"name": null, "participations": 0}
	}`, w.Body.String())
}
