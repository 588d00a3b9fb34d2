package dto

import (
	"time"

	"github.com/astromusic/astromusic/internal/model"
)

// UpdateUserRequest is a partial update; omitted fields are unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// SetActiveRequest is the body of PATCH /api/v1/admin/users/{id}.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserWithChartStatus adds whether the account owns a birth chart.
type UserWithChartStatus struct {
	UserResponse
	HasBirthChart bool `json:"has_birth_chart"`
}

// ToUserResponse converts a User model.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
