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
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("create"))

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	if retrieved.Email != user.Email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, user.Email)
	}
	if retrieved.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash mismatch: got %q, want %q", retrieved.PasswordHash, user.PasswordHash)
	}
	if !retrieved.IsActive {
		t.Error("Expected new user to be active")
	}
	if retrieved.IsStaff || retrieved.IsSuperuser {
		t.Error("Expected new user to have no staff flags")
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestUser(t, email)
	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (1) failed: %v", err)
	}

	second := testutil.NewTestUser(t, email)
	err := repo.CreateUser(ctx, second)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetUserByEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("byemail"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, user.ID)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdateUserProfile(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("profile"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.Name = "Renamed"
	user.PasswordHash = "new-hash"
	if err := repo.UpdateUserProfile(ctx, user); err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Name != "Renamed" {
		t.Errorf("Name mismatch: got %q, want %q", retrieved.Name, "Renamed")
	}
	if retrieved.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash mismatch: got %q", retrieved.PasswordHash)
	}
}

func TestIntegrationUserRepository_UpdateUserFlags(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("flags"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.UpdateUserFlags(ctx, user.ID, false, true); err != nil {
		t.Fatalf("UpdateUserFlags failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.IsActive {
		t.Error("Expected user to be deactivated")
	}
	if !retrieved.IsStaff {
		t.Error("Expected user to be staff")
	}

	if err := repo.UpdateUserFlags(ctx, "nonexistent-user", true, false); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdateUserLastLogin(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("lastlogin"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.UpdateUserLastLogin(ctx, user.ID, at); err != nil {
		t.Fatalf("UpdateUserLastLogin failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.LastLogin == nil {
		t.Fatal("Expected last_login to be set")
	}
	if !retrieved.LastLogin.Equal(at) {
		t.Errorf("LastLogin mismatch: got %v, want %v", retrieved.LastLogin, at)
	}
}

func TestIntegrationUserRepository_ListUsers(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	match := testutil.NewTestUser(t, "findme-alpha@example.com")
	other := testutil.NewTestUser(t, "someone-else@example.com")
	if err := repo.CreateUser(ctx, match); err != nil {
		t.Fatalf("CreateUser (match) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser (other) failed: %v", err)
	}

	users, err := repo.ListUsers(ctx, "findme", 50)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}

	if len(users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(users))
	}
	if users[0].ID != match.ID {
		t.Errorf("ID mismatch: got %q, want %q", users[0].ID, match.ID)
	}
}

func TestIntegrationUserRepository_PromoteSuperuser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("promote"))
	user.IsActive = false
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.PromoteSuperuser(ctx, user.ID); err != nil {
		t.Fatalf("PromoteSuperuser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if !retrieved.IsActive || !retrieved.IsStaff || !retrieved.IsSuperuser {
		t.Errorf("Expected full flag set, got active=%v staff=%v superuser=%v",
			retrieved.IsActive, retrieved.IsStaff, retrieved.IsSuperuser)
	}
}

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetAllSchemas(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schemas: %v", err)
	}

	return ctx, repo
}
