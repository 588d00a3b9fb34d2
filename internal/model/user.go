// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that may own one birth chart.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never serialize
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext holds the authenticated principal for a request.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID      string
	TokenID     string
	IsSuperuser bool
}
