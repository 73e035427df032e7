package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/recipebox/recipebox/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// applyMigration runs a single migration file against the pool.
func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}

	return nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
// Dropping users cascades to auth_tokens and recipes.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000001_users.down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000001_users.up.sql")
}

// ResetAuthTokensSchema drops and recreates the auth_tokens schema for tests.
func ResetAuthTokensSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000002_auth_tokens.down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000002_auth_tokens.up.sql")
}

// ResetRecipesSchema drops and recreates the recipes, tags and
// ingredients schema for tests.
func ResetRecipesSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := applyMigration(ctx, pool, "000003_recipes.down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, "000003_recipes.up.sql")
}

// ResetAllSchemas rebuilds the full schema from scratch in migration order.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ResetUsersSchema(ctx, pool); err != nil {
		return err
	}
	if err := ResetAuthTokensSchema(ctx, pool); err != nil {
		return err
	}
	return ResetRecipesSchema(ctx, pool)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
// The password hash is a placeholder; tests that exercise login
// should hash a real password themselves.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("user"),
		Email:        model.NormalizeEmail(email),
		Name:         "Test User",
		PasswordHash: fmt.Sprintf("hash-%d", now.UnixNano()),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestRecipe creates a test recipe owned by userID.
func NewTestRecipe(t testing.TB, userID, title string) *model.Recipe {
	t.Helper()
	now := time.Now().UTC()
	return &model.Recipe{
		ID:          UniqueID("recipe"),
		UserID:      userID,
		Title:       title,
		TimeMinutes: 15,
		Price:       decimal.RequireFromString("5.50"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestToken creates a test API token for userID.
func NewTestToken(t testing.TB, userID string) *model.Token {
	t.Helper()
	now := time.Now().UTC()
	return &model.Token{
		ID:          UniqueID("token"),
		UserID:      userID,
		TokenHash:   fmt.Sprintf("hash-%d", now.UnixNano()),
		TokenPrefix: "rk_test_abc123",
		Scopes:      model.DefaultScopes(),
		Name:        "Test Token",
		CreatedAt:   now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
