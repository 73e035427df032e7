// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Scope constants for API token authorization.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// ValidScopes contains all valid scope values.
var ValidScopes = []string{ScopeRead, ScopeWrite}

// DefaultScopes returns the scopes granted when a token request names none.
func DefaultScopes() []string {
	return []string{ScopeRead, ScopeWrite}
}

// ValidScope reports whether s is a recognized scope value.
func ValidScope(s string) bool {
	return slices.Contains(ValidScopes, s)
}

// Token represents a long-lived opaque API token.
// Only the Argon2id hash is stored; the plaintext is shown once at issuance.
type Token struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []string   `json:"scopes"`
	Name        string     `json:"name,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

// HasScope checks if the token carries a specific scope.
func (t *Token) HasScope(scope string) bool {
	return slices.Contains(t.Scopes, scope)
}

// AuthContext holds the authenticated request identity.
// It is injected into the request context by the auth middleware.
// TokenID and TokenPrefix are empty for JWT session credentials.
type AuthContext struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	Email       string
	Scopes      []string
	IsStaff     bool
	IsSuperuser bool
}

// HasScope checks if the auth context has a specific scope.
func (a *AuthContext) HasScope(scope string) bool {
	return slices.Contains(a.Scopes, scope)
}

// CanAdminister reports whether the identity may use staff-only endpoints.
func (a *AuthContext) CanAdminister() bool {
	return a.IsStaff || a.IsSuperuser
}
