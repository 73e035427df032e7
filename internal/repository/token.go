package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for token repository operations.
var (
	ErrTokenNotFound = errors.New("token not found")
)

const tokenColumns = `id, user_id, token_hash, token_prefix, scopes, name, revoked_at, last_used_at, created_at`

// CreateToken inserts a new API token into the database.
func (r *Repository) CreateToken(ctx context.Context, token *model.Token) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, token_hash, token_prefix, scopes, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.TokenPrefix,
		pq.Array(token.Scopes),
		token.Name,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetTokenByID retrieves a token by its ID.
func (r *Repository) GetTokenByID(ctx context.Context, id string) (*model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE id = $1`

	token, err := scanToken(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token by ID: %w", err)
	}

	return token, nil
}

// GetTokensByPrefix retrieves all active tokens matching a prefix.
// Used during authentication to find candidate tokens for verification.
func (r *Repository) GetTokensByPrefix(ctx context.Context, prefix string) ([]*model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE token_prefix = $1 AND revoked_at IS NULL`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by prefix: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// ListTokensByUserID retrieves all tokens for a user, newest first.
func (r *Repository) ListTokensByUserID(ctx context.Context, userID string) ([]*model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM auth_tokens WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// RevokeToken revokes a token owned by the given user.
// The owner scoping means revoking another user's token reports not found.
func (r *Repository) RevokeToken(ctx context.Context, id, userID string) error {
	query := `
		UPDATE auth_tokens
		SET revoked_at = NOW()
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// UpdateTokenLastUsed records token usage. Called asynchronously from the
// auth middleware; failures are not fatal.
func (r *Repository) UpdateTokenLastUsed(ctx context.Context, id string) error {
	query := `UPDATE auth_tokens SET last_used_at = $2 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}

	return nil
}

// collectTokens drains rows into Token models.
func collectTokens(rows pgx.Rows) ([]*model.Token, error) {
	var tokens []*model.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return tokens, nil
}

// scanToken scans a single row into a Token model.
func scanToken(row pgx.Row) (*model.Token, error) {
	var token model.Token
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.TokenPrefix,
		pq.Array(&token.Scopes),
		&token.Name,
		&token.RevokedAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
