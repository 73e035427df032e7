package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

type output struct {
	UserID  string   `json:"user_id"`
	Email   string   `json:"email"`
	TokenID string   `json:"token_id"`
	Token   string   `json:"token"`
	Scopes  []string `json:"scopes"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@recipebox.local", "Superuser email")
		password    = flag.String("password", "", "Superuser password (required)")
		name        = flag.String("name", "Administrator", "Superuser display name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureSuperuser(ctx, repo, *email, *password, *name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	generated, err := auth.GenerateToken(auth.EnvLive)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	token := &model.Token{
		ID:          ulid.Make().String(),
		UserID:      user.ID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Scopes:      model.DefaultScopes(),
		Name:        "bootstrap",
		CreatedAt:   time.Now().UTC(),
	}

	if err := repo.CreateToken(ctx, token); err != nil {
		fmt.Fprintln(os.Stderr, "create token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:  user.ID,
		Email:   user.Email,
		TokenID: token.ID,
		Token:   generated.Plaintext,
		Scopes:  token.Scopes,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureSuperuser creates the superuser account, or reuses an existing
// account with the same email after promoting it.
func ensureSuperuser(ctx context.Context, repo *repository.Repository, email, password, name string) (*model.User, error) {
	normalized := model.NormalizeEmail(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        normalized,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = repo.CreateUser(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrEmailExists) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	existing, err := repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("load existing user: %w", err)
	}
	if err := repo.PromoteSuperuser(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("promote existing user: %w", err)
	}
	existing.IsActive = true
	existing.IsStaff = true
	existing.IsSuperuser = true

	return existing, nil
}
