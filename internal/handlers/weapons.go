package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

type WeaponService interface {
	List(ctx context.Context) ([]*models.Weapon, error)
	ByCaliber(ctx context.Context, caliber string) ([]*models.Weapon, error)
	ByOwner(ctx context.Context, owner string) ([]*models.Weapon, error)
	Get(ctx context.Context, id string) (*models.Weapon, error)
	Create(ctx context.Context, userID string, in services.WeaponInput) (*models.Weapon, error)
	Update(ctx context.Context, id string, in services.WeaponUpdate) (*models.Weapon, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.WeaponStats, error)
}

// WeaponHandler serves the club arsenal.
type WeaponHandler struct {
	service WeaponService
}

func NewWeaponHandler(service WeaponService) *WeaponHandler {
	return &WeaponHandler{service: service}
}

type CreateWeaponRequest struct {
	Name    string `json:"name" validate:"max=100"`
	Caliber string `json:"caliber" validate:"max=50"`
	Owner   string `json:"owner" validate:"max=100"`
}

type UpdateWeaponRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	Caliber *string `json:"caliber" validate:"omitempty,max=50"`
	Owner   *string `json:"owner" validate:"omitempty,max=100"`
}

type WeaponStatsResponse struct {
	TotalWeapons int            `json:"total_weapons"`
	ByCaliber    map[string]int `json:"by_caliber"`
	ByOwner      map[string]int `json:"by_owner"`
}

func (h *WeaponHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.List)
}

func (h *WeaponHandler) ByCaliber(w http.ResponseWriter, r *http.Request) {
	caliber := chi.URLParam(r, "caliber")
	h.writeList(w, r, func(ctx context.Context) ([]*models.Weapon, error) {
		return h.service.ByCaliber(ctx, caliber)
	})
}

func (h *WeaponHandler) ByOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	h.writeList(w, r, func(ctx context.Context) ([]*models.Weapon, error) {
		return h.service.ByOwner(ctx, owner)
	})
}

func (h *WeaponHandler) writeList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*models.Weapon, error)) {
	weapons, err := list(r.Context())
	if err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"weapons": toWeaponResponses(weapons)})
}

func (h *WeaponHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	weapon, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toWeaponResponse(weapon))
}

func (h *WeaponHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateWeaponRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	weapon, err := h.service.Create(r.Context(), caller.ID, services.WeaponInput(req))
	if err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, toWeaponResponse(weapon))
}

func (h *WeaponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWeaponRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	weapon, err := h.service.Update(r.Context(), id, services.WeaponUpdate(req))
	if err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, toWeaponResponse(weapon))
}

func (h *WeaponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteMessage(w, http.StatusOK, "Weapon deleted successfully")
}

func (h *WeaponHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, "Weapon not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, WeaponStatsResponse{
		TotalWeapons: stats.Total,
		ByCaliber:    stats.ByCaliber,
		ByOwner:      stats.ByOwner,
	})
}
