// file: model/request.go

package model

import "time"

// RegisterRequest defines the payload for creating a new user.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest defines the payload for user authentication. Missing fields are checked by
// the session service as a failed login attempt.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token in the body when the jid cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest holds the optional profile fields; empty values mean "unchanged".
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// ChangePasswordRequest is checked by the session service, not by tags, so that
// missing or short passwords map to the InvalidInput error kind.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type ProfileUpdateResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
