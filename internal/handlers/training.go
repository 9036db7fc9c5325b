package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

type TrainingService interface {
	List(ctx context.Context, userID, weaponID string, page, perPage int) (*services.TrainingPage, error)
	Get(ctx context.Context, userID, id string) (*models.TrainingSession, error)
	Create(ctx context.Context, userID string, in services.TrainingInput) (*models.TrainingSession, error)
	Update(ctx context.Context, userID, id string, in services.TrainingUpdate) (*models.TrainingSession, error)
	Delete(ctx context.Context, userID, id string) error
	Recent(ctx context.Context, userID string, limit int) ([]*models.TrainingSession, error)
	Stats(ctx context.Context, userID string) (*services.TrainingStats, error)
}

// TrainingHandler serves the caller's own training sessions. Changes here
// do not refresh the progress snapshot; clients call POST /progress/update.
type TrainingHandler struct {
	service TrainingService
}

func NewTrainingHandler(service TrainingService) *TrainingHandler {
	return &TrainingHandler{service: service}
}

type CreateTrainingRequest struct {
	WeaponID        string  `json:"weapon_id" validate:"required,uuid"`
	ShotsFired      int     `json:"shots_fired" validate:"gte=0"`
	Hits            int     `json:"hits" validate:"gte=0"`
	Score           float64 `json:"score" validate:"gte=0"`
	Notes           string  `json:"notes" validate:"max=2000"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
	Date            string  `json:"date"`
}

type UpdateTrainingRequest struct {
	WeaponID        *string  `json:"weapon_id" validate:"omitempty,uuid"`
	ShotsFired      *int     `json:"shots_fired" validate:"omitempty,gte=0"`
	Hits            *int     `json:"hits" validate:"omitempty,gte=0"`
	Score           *float64 `json:"score" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes" validate:"omitempty,max=2000"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,gt=0"`
	Date            *string  `json:"date"`
}

type TrainingPageResponse struct {
	Sessions []TrainingSessionResponse `json:"sessions"`
	Page     int                       `json:"page"`
	PerPage  int                       `json:"per_page"`
	Total    int                       `json:"total"`
	Pages    int                       `json:"pages"`
	HasNext  bool                      `json:"has_next"`
	HasPrev  bool                      `json:"has_prev"`
}

type trainingGeneralJSON struct {
	TotalSessions int     `json:"total_sessions"`
	TotalShots    int     `json:"total_shots"`
	TotalHits     int     `json:"total_hits"`
	AvgAccuracy   float64 `json:"avg_accuracy"`
	AvgScore      float64 `json:"avg_score"`
}

type weaponBreakdownJSON struct {
	WeaponName string  `json:"weapon_name"`
	Caliber    string  `json:"caliber"`
	Sessions   int     `json:"sessions"`
	Shots      int     `json:"shots"`
	Hits       int     `json:"hits"`
	Accuracy   float64 `json:"accuracy"`
	AvgScore   float64 `json:"avg_score"`
}

type evolutionJSON struct {
	Date     string  `json:"date"`
	Accuracy float64 `json:"accuracy"`
	Score    float64 `json:"score"`
}

type TrainingStatsResponse struct {
	General   trainingGeneralJSON   `json:"general"`
	ByWeapon  []weaponBreakdownJSON `json:"by_weapon"`
	Evolution []evolutionJSON       `json:"evolution"`
}

// List handles GET /training-sessions
func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	page, ok := queryInt(w, q.Get("page"), "page", 1)
	if !ok {
		return
	}
	perPage, ok := queryInt(w, q.Get("per_page"), "per_page", services.DefaultPerPage)
	if !ok {
		return
	}

	weaponID := q.Get("weapon_id")
	if weaponID != "" {
		if _, err := uuid.Parse(weaponID); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid weapon_id")
			return
		}
	}

	res, err := h.service.List(r.Context(), caller.ID, weaponID, page, perPage)
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TrainingPageResponse{
		Sessions: toSessionResponses(res.Sessions),
		Page:     res.Page,
		PerPage:  res.PerPage,
		Total:    res.Total,
		Pages:    res.Pages,
		HasNext:  res.HasNext,
		HasPrev:  res.HasPrev,
	})
}

// Get handles GET /training-sessions/{id}
func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	session, err := h.service.Get(r.Context(), caller.ID, id)
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// Create handles POST /training-sessions
func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateTrainingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	session, err := h.service.Create(r.Context(), caller.ID, services.TrainingInput{
		WeaponID:        req.WeaponID,
		ShotsFired:      req.ShotsFired,
		Hits:            req.Hits,
		Score:           req.Score,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		Date:            date,
	})
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

// Update handles PUT /training-sessions/{id}
func (h *TrainingHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTrainingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	update := services.TrainingUpdate{
		WeaponID:        req.WeaponID,
		ShotsFired:      req.ShotsFired,
		Hits:            req.Hits,
		Score:           req.Score,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeServiceError(w, err, "")
			return
		}
		update.Date = date
	}

	session, err := h.service.Update(r.Context(), caller.ID, id, update)
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// Delete handles DELETE /training-sessions/{id}
func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller.ID, id); err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}
	pkghttp.WriteMessage(w, http.StatusOK, "Training session deleted successfully")
}

// Recent handles GET /training-sessions/recent
func (h *TrainingHandler) Recent(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	limit, ok := queryInt(w, r.URL.Query().Get("limit"), "limit", services.DefaultRecentLimit)
	if !ok {
		return
	}

	sessions, err := h.service.Recent(r.Context(), caller.ID, limit)
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"sessions": toSessionResponses(sessions)})
}

// Stats handles GET /training-sessions/stats
func (h *TrainingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	st, err := h.service.Stats(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err, "Training session not found")
		return
	}

	resp := TrainingStatsResponse{
		General: trainingGeneralJSON{
			TotalSessions: st.General.TotalSessions,
			TotalShots:    st.General.TotalShots,
			TotalHits:     st.General.TotalHits,
			AvgAccuracy:   st.General.AvgAccuracy,
			AvgScore:      st.General.AvgScore,
		},
		ByWeapon:  make([]weaponBreakdownJSON, 0, len(st.ByWeapon)),
		Evolution: make([]evolutionJSON, 0, len(st.Evolution)),
	}
	for _, b := range st.ByWeapon {
		resp.ByWeapon = append(resp.ByWeapon, weaponBreakdownJSON(b))
	}
	for _, e := range st.Evolution {
		resp.Evolution = append(resp.Evolution, evolutionJSON{Date: formatDate(e.Date), Accuracy: e.Accuracy, Score: e.Score})
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// queryInt parses an optional integer query parameter.
func queryInt(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid "+name)
		return 0, false
	}
	return v, true
}
