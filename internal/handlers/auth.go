package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/models"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
)

// AuthService defines the interface for auth business logic
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*services.AuthResult, error)
	Login(ctx context.Context, login, password string, meta services.RequestMeta) (*services.AuthResult, error)
	ChangePassword(ctx context.Context, user *models.User, current, next string, meta services.RequestMeta) error
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, user *models.User, meta services.RequestMeta)
}

// ProfileService defines the interface for profile business logic
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
}

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	service  AuthService
	profiles ProfileService
	ips      *pkghttp.IPResolver
}

func NewAuthHandler(service AuthService, profiles ProfileService, ips *pkghttp.IPResolver) *AuthHandler {
	return &AuthHandler{service: service, profiles: profiles, ips: ips}
}

// Request DTOs

type RegisterRequest struct {
	Username           string `json:"username" validate:"max=80"`
	Email              string `json:"email" validate:"max=254"`
	Password           string `json:"password"`
	FullName           string `json:"full_name" validate:"max=200"`
	Phone              string `json:"phone" validate:"max=30"`
	RegistrationNumber string `json:"registration_number" validate:"max=50"`
	Club               string `json:"club" validate:"max=120"`
	Category           string `json:"category" validate:"max=50"`
}

// LoginRequest carries a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest only changes the fields present in the body.
type UpdateProfileRequest struct {
	FullName           *string `json:"full_name" validate:"omitempty,max=200"`
	Email              *string `json:"email" validate:"omitempty,max=254"`
	Phone              *string `json:"phone" validate:"omitempty,max=30"`
	RegistrationNumber *string `json:"registration_number" validate:"omitempty,max=50"`
	Club               *string `json:"club" validate:"omitempty,max=120"`
	Category           *string `json:"category" validate:"omitempty,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type VerifyTokenResponse struct {
	Valid   bool          `json:"valid"`
	User    *UserResponse `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		FullName:           req.FullName,
		Phone:              req.Phone,
		RegistrationNumber: req.RegistrationNumber,
		Club:               req.Club,
		Category:           req.Category,
	}, requestMeta(r, h.ips))
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toAuthResponse("User registered successfully", res))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password, requestMeta(r, h.ips))
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toAuthResponse("Login successful", res))
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), caller.ID, models.ProfileUpdate{
		FullName:           req.FullName,
		Email:              req.Email,
		Phone:              req.Phone,
		RegistrationNumber: req.RegistrationNumber,
		Club:               req.Club,
		Category:           req.Category,
	})
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserResponse(user),
	})
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.ChangePassword(r.Context(), caller, req.CurrentPassword, req.NewPassword, requestMeta(r, h.ips))
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Password changed successfully")
}

// VerifyToken handles POST /auth/verify-token. Every rejection reason gets
// the same 401 body.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteJSON(w, http.StatusBadRequest, VerifyTokenResponse{Message: "Token is required"})
		return
	}

	user, err := h.service.VerifyToken(r.Context(), req.Token)
	if err != nil {
		var vErr *models.ValidationError
		switch {
		case errors.As(err, &vErr):
			pkghttp.WriteJSON(w, http.StatusBadRequest, VerifyTokenResponse{Message: "Token is required"})
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteJSON(w, http.StatusUnauthorized, VerifyTokenResponse{Message: "Invalid or expired token"})
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, VerifyTokenResponse{Valid: true, User: toUserResponse(user)})
}

// Logout handles POST /auth/logout. Tokens are stateless, so the client
// simply discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	h.service.Logout(r.Context(), caller, requestMeta(r, h.ips))
	pkghttp.WriteMessage(w, http.StatusOK, "Logout successful")
}
