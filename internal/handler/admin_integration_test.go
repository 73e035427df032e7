//go:build integration

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/service"
	"github.com/recipebox/recipebox/internal/testutil"
)

func newAdminTestEnv(t *testing.T) (context.Context, *chi.Mux, *service.UserService, *service.TokenService) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL)
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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(repo, nil)
	tokens := service.NewTokenService(repo, auth.EnvTest, nil)
	admin := NewAdminHandler(users, tokens, logger)

	router := chi.NewRouter()
	router.Get("/api/v1/admin/users/{user_id}/tokens", admin.ListUserTokens)

	return ctx, router, users, tokens
}

func TestIntegrationAdminListUserTokens(t *testing.T) {
	ctx, router, users, tokens := newAdminTestEnv(t)

	user, err := users.Register(ctx, service.RegisterInput{
		Email:    testutil.UniqueEmail("admin-tokens"),
		Password: "testpass123",
		Name:     "Token Owner",
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	for _, name := range []string{"laptop", "ci"} {
		if _, err := tokens.IssueToken(ctx, service.IssueTokenInput{
			UserID: user.ID,
			Name:   name,
		}); err != nil {
			t.Fatalf("issue token %q: %v", name, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/"+user.ID+"/tokens", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Tokens []struct {
			ID     string   `json:"id"`
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(response.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(response.Tokens))
	}
	names := map[string]bool{}
	for _, token := range response.Tokens {
		names[token.Name] = true
		if len(token.Scopes) == 0 {
			t.Errorf("token %q has no scopes", token.Name)
		}
	}
	if !names["laptop"] || !names["ci"] {
		t.Errorf("expected tokens laptop and ci, got %v", names)
	}
}

func TestIntegrationAdminListUserTokens_UnknownUser(t *testing.T) {
	_, router, _, _ := newAdminTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/01JUNKUSERID/tokens", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
