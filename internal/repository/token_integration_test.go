//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/testutil"
)

// ============================================================================
// Token Repository Integration Tests
// ============================================================================

func TestIntegrationTokenRepository_CreateToken(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	userID := createTestUser(ctx, t, repo)

	token := testutil.NewTestToken(t, userID)
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	retrieved, err := repo.GetTokenByID(ctx, token.ID)
	if err != nil {
		t.Fatalf("GetTokenByID failed: %v", err)
	}

	if retrieved.TokenHash != token.TokenHash {
		t.Errorf("TokenHash mismatch: got %q, want %q", retrieved.TokenHash, token.TokenHash)
	}
	if retrieved.TokenPrefix != token.TokenPrefix {
		t.Errorf("TokenPrefix mismatch: got %q, want %q", retrieved.TokenPrefix, token.TokenPrefix)
	}
	if len(retrieved.Scopes) != 2 {
		t.Errorf("Expected 2 scopes, got %d", len(retrieved.Scopes))
	}
	if retrieved.RevokedAt != nil {
		t.Error("Expected new token to be unrevoked")
	}
}

func TestIntegrationTokenRepository_GetByPrefix_ExcludesRevoked(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	userID := createTestUser(ctx, t, repo)

	prefix := "rk_test_revoked"

	active := testutil.NewTestToken(t, userID)
	active.TokenPrefix = prefix
	revoked := testutil.NewTestToken(t, userID)
	revoked.TokenPrefix = prefix

	if err := repo.CreateToken(ctx, active); err != nil {
		t.Fatalf("CreateToken (active) failed: %v", err)
	}
	if err := repo.CreateToken(ctx, revoked); err != nil {
		t.Fatalf("CreateToken (revoked) failed: %v", err)
	}
	if err := repo.RevokeToken(ctx, revoked.ID, userID); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	tokens, err := repo.GetTokensByPrefix(ctx, prefix)
	if err != nil {
		t.Fatalf("GetTokensByPrefix failed: %v", err)
	}

	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].ID != active.ID {
		t.Errorf("ID mismatch: got %q, want %q", tokens[0].ID, active.ID)
	}
}

func TestIntegrationTokenRepository_RevokeToken_WrongOwner(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	owner := createTestUser(ctx, t, repo)
	stranger := createTestUser(ctx, t, repo)

	token := testutil.NewTestToken(t, owner)
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	if err := repo.RevokeToken(ctx, token.ID, stranger); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for wrong owner, got: %v", err)
	}

	retrieved, err := repo.GetTokenByID(ctx, token.ID)
	if err != nil {
		t.Fatalf("GetTokenByID failed: %v", err)
	}
	if retrieved.RevokedAt != nil {
		t.Error("Expected token to remain unrevoked")
	}
}

func TestIntegrationTokenRepository_ListTokensByUserID(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	userID := createTestUser(ctx, t, repo)

	first := testutil.NewTestToken(t, userID)
	if err := repo.CreateToken(ctx, first); err != nil {
		t.Fatalf("CreateToken (1) failed: %v", err)
	}
	time.Sleep(1 * time.Millisecond)
	second := testutil.NewTestToken(t, userID)
	second.CreatedAt = time.Now().UTC()
	if err := repo.CreateToken(ctx, second); err != nil {
		t.Fatalf("CreateToken (2) failed: %v", err)
	}

	tokens, err := repo.ListTokensByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListTokensByUserID failed: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("Expected 2 tokens, got %d", len(tokens))
	}
	// Newest first
	if tokens[0].ID != second.ID {
		t.Errorf("Expected newest token first, got %q", tokens[0].ID)
	}
}

func TestIntegrationTokenRepository_UpdateTokenLastUsed(t *testing.T) {
	ctx, repo := newUserTestEnv(t)
	userID := createTestUser(ctx, t, repo)

	token := testutil.NewTestToken(t, userID)
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	if err := repo.UpdateTokenLastUsed(ctx, token.ID); err != nil {
		t.Fatalf("UpdateTokenLastUsed failed: %v", err)
	}

	retrieved, err := repo.GetTokenByID(ctx, token.ID)
	if err != nil {
		t.Fatalf("GetTokenByID failed: %v", err)
	}
	if retrieved.LastUsedAt == nil {
		t.Error("Expected last_used_at to be set")
	}
}

// createTestUser inserts a user and returns its ID.
func createTestUser(ctx context.Context, t *testing.T, repo *Repository) string {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail("tokenowner"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user.ID
}
