package handler

import "github.com/vidstream/account-service/internal/core/domain"

// --- Request types ---

// loginRequest accepts either email or username as the identifier.
type loginRequest struct {
	Email    string `json:"email"    validate:"omitempty,email"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

// refreshRequest carries the refresh token for non-browser clients; browsers
// send it via the refreshToken cookie instead.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// --- Response types ---

// sessionResponse is the login/refresh payload. Tokens are duplicated into
// cookies for browser clients; the body serves everyone else.
type sessionResponse struct {
	User         *domain.PublicAccount `json:"user"`
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
}
