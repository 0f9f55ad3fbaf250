package dto

import (
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// Response is the envelope returned by every auth endpoint.
type Response struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`

	Token     string `json:"token,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // seconds
}

// UserRes is the public view of a user. It never carries the password hash.
type UserRes struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserRes converts a domain user into its response form.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Fail builds a failure response.
func Fail(message string) Response {
	return Response{Status: false, Message: message}
}

// TokenResponse builds a success response carrying a bearer token.
func TokenResponse(message, token string, ttl time.Duration) Response {
	return Response{
		Status:    true,
		Message:   message,
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int64(ttl.Seconds()),
	}
}
