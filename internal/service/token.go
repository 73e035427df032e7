package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Token service errors.
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidScope  = errors.New("invalid scope")
	ErrNoScopes      = errors.New("at least one scope is required")
)

// maxTokenNameLength bounds the free-form token label.
const maxTokenNameLength = 100

// TokenService handles API token lifecycle.
type TokenService struct {
	repo    *repository.Repository
	env     string
	metrics metrics.Recorder
}

// NewTokenService creates a new TokenService. env selects the token
// prefix environment, auth.EnvLive or auth.EnvTest.
func NewTokenService(repo *repository.Repository, env string, recorder metrics.Recorder) *TokenService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TokenService{
		repo:    repo,
		env:     env,
		metrics: recorder,
	}
}

// IssueTokenInput defines input for issuing a token.
type IssueTokenInput struct {
	UserID string
	Name   string
	Scopes []string
}

// IssuedToken pairs a stored token with its plaintext form.
// The plaintext is shown exactly once and never persisted.
type IssuedToken struct {
	Token     *model.Token
	Plaintext string
}

// IssueToken mints a new API token for a user.
func (s *TokenService) IssueToken(ctx context.Context, input IssueTokenInput) (*IssuedToken, error) {
	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = model.DefaultScopes()
	}
	for _, scope := range scopes {
		if !model.ValidScope(scope) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
		}
	}

	name := input.Name
	if len(name) > maxTokenNameLength {
		name = name[:maxTokenNameLength]
	}

	generated, err := auth.GenerateToken(s.env)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		ID:          ulid.Make().String(),
		UserID:      input.UserID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Scopes:      scopes,
		Name:        name,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return &IssuedToken{
		Token:     token,
		Plaintext: generated.Plaintext,
	}, nil
}

// ListTokens retrieves a user's tokens, including revoked ones.
func (s *TokenService) ListTokens(ctx context.Context, userID string) ([]*model.Token, error) {
	return s.repo.ListTokensByUserID(ctx, userID)
}

// RevokeToken revokes a token owned by the user. A cached auth context
// for the token may survive until its TTL lapses, a few minutes at most.
func (s *TokenService) RevokeToken(ctx context.Context, id, userID string) error {
	if err := s.repo.RevokeToken(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	s.metrics.IncTokenRevoked()

	return nil
}
