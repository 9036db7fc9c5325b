package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/progress"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

type ProgressService interface {
	Recompute(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	GetProgress(ctx context.Context, userID string) (*models.ProgressSnapshot, error)
	NextLevel(ctx context.Context, userID string) (*progress.Projection, error)
}

type LevelService interface {
	List(ctx context.Context) ([]*models.Level, error)
	Create(ctx context.Context, in services.LevelInput) (*models.Level, error)
}

// ProgressHandler serves the level ladder and member progress.
type ProgressHandler struct {
	progress ProgressService
	levels   LevelService
}

func NewProgressHandler(progress ProgressService, levels LevelService) *ProgressHandler {
	return &ProgressHandler{progress: progress, levels: levels}
}

type CreateLevelRequest struct {
	Name     string  `json:"name" validate:"max=100"`
	Message  string  `json:"message"`
	MinScore float64 `json:"min_score" validate:"gte=0"`
	Order    int     `json:"order" validate:"gte=0"`
}

const noProgressMessage = "No progress recorded yet"

// ListLevels handles GET /levels
func (h *ProgressHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.levels.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Level not found")
		return
	}

	out := make([]*LevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, toLevelResponse(l))
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"levels": out})
}

// CreateLevel handles POST /levels
func (h *ProgressHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req CreateLevelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	level, err := h.levels.Create(r.Context(), services.LevelInput{
		Name:     req.Name,
		Message:  req.Message,
		MinScore: req.MinScore,
		Order:    req.Order,
	})
	if err != nil {
		writeServiceError(w, err, "Level not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toLevelResponse(level))
}

// MyProgress handles GET /progress
func (h *ProgressHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	h.writeProgress(w, r, caller.ID)
}

// MyNextLevel handles GET /progress/next-level
func (h *ProgressHandler) MyNextLevel(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	h.writeNextLevel(w, r, caller.ID)
}

// Recompute handles POST /progress/update
func (h *ProgressHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	snap, err := h.progress.Recompute(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Progress updated successfully",
		"progress": toProgressResponse(snap),
	})
}

// UserProgress handles GET /users/{id}/progress
func (h *ProgressHandler) UserProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	h.writeProgress(w, r, id)
}

// UserNextLevel handles GET /users/{id}/progress/next-level
func (h *ProgressHandler) UserNextLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	h.writeNextLevel(w, r, id)
}

func (h *ProgressHandler) writeProgress(w http.ResponseWriter, r *http.Request, userID string) {
	snap, err := h.progress.GetProgress(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, noProgressMessage)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toProgressResponse(snap))
}

func (h *ProgressHandler) writeNextLevel(w http.ResponseWriter, r *http.Request, userID string) {
	proj, err := h.progress.NextLevel(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, noProgressMessage)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toNextLevelResponse(proj))
}
