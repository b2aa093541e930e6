package dto

import (
	"time"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User domain.PublicUser `json:"user"`
	Auth AuthResponse      `json:"auth"`
}

// UserSummaryResponse is one row of the admin user directory.
type UserSummaryResponse struct {
	domain.PublicUser
	CreatedAt       time.Time `json:"created_at"`
	ComplaintsCount int       `json:"complaints_count"`
}
