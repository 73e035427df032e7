package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// CreateTokenRequest represents the request body for issuing a token.
// Tokens are minted by exchanging credentials, not by presenting an
// existing token.
type CreateTokenRequest struct {
	Email    string   `json:"email" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Name     string   `json:"name,omitempty" validate:"max=100"`
	Scopes   []string `json:"scopes,omitempty" validate:"omitempty,dive,oneof=read write"`
}

// CreateTokenResponse carries the plaintext token, shown once only.
type CreateTokenResponse struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	TokenPrefix string    `json:"token_prefix"`
	Name        string    `json:"name,omitempty"`
	Scopes      []string  `json:"scopes"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse represents a stored token without its secret.
type TokenResponse struct {
	ID          string     `json:"id"`
	TokenPrefix string     `json:"token_prefix"`
	Name        string     `json:"name,omitempty"`
	Scopes      []string   `json:"scopes"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateSessionRequest represents the request body for a JWT login.
type CreateSessionRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries the signed session JWT.
type SessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// ToTokenResponse converts a Token model to TokenResponse DTO.
func ToTokenResponse(token *model.Token) *TokenResponse {
	return &TokenResponse{
		ID:          token.ID,
		TokenPrefix: token.TokenPrefix,
		Name:        token.Name,
		Scopes:      token.Scopes,
		RevokedAt:   token.RevokedAt,
		LastUsedAt:  token.LastUsedAt,
		CreatedAt:   token.CreatedAt,
	}
}
