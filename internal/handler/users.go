package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/service"
)

// UserHandler serves the caller's own account and the admin toggle.
type UserHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *service.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserWithChartStatus{
		UserResponse:  *dto.ToUserResponse(profile.User),
		HasBirthChart: profile.HasBirthChart,
	})
}

// Update handles PUT /api/v1/users/me.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Update(r.Context(), auth.UserIDFromContext(r.Context()), service.UpdateAccountInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users/me.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.accounts.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("account_deleted", slog.String("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

// SetActive handles PATCH /api/v1/admin/users/{id}.
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req dto.SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: "is_active: is required",
			Code:  "VALIDATION_FAILED",
			Field: "is_active",
		})
		return
	}

	user, err := h.accounts.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("admin_set_active",
		slog.String("admin_id", auth.UserIDFromContext(r.Context())),
		slog.String("user_id", user.ID),
		slog.Bool("is_active", user.IsActive),
	)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
