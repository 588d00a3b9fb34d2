package handler

import (
	"log/slog"
	"net/http"

	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/service"
)

// AuthHandler handles registration and sessions.
type AuthHandler struct {
	accounts  *service.AccountService
	accessTTL int64
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. accessTTLSeconds is reported
// to clients as expires_in.
func NewAuthHandler(accounts *service.AccountService, accessTTLSeconds int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, accessTTL: accessTTLSeconds, logger: logger}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Create(r.Context(), service.CreateAccountInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTokenResponse(pair, h.accessTTL))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTokenResponse(pair, h.accessTTL))
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.Logout(r.Context(), req.RefreshToken); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
