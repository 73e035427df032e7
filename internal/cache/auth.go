package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authCacheTTL is the time-to-live for cached auth contexts.
	authCacheTTL = 5 * time.Minute
)

// CachedAuthContext represents auth context stored in Redis.
type CachedAuthContext struct {
	TokenID     string   `json:"token_id"`
	TokenPrefix string   `json:"token_prefix"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Scopes      []string `json:"scopes"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	key := authCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		TokenID:     cached.TokenID,
		TokenPrefix: cached.TokenPrefix,
		UserID:      cached.UserID,
		Email:       cached.Email,
		Scopes:      cached.Scopes,
		IsStaff:     cached.IsStaff,
		IsSuperuser: cached.IsSuperuser,
	}, nil
}

// SetAuthContext caches an auth context.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	key := authCachePrefix + cacheKey

	cached := CachedAuthContext{
		TokenID:     auth.TokenID,
		TokenPrefix: auth.TokenPrefix,
		UserID:      auth.UserID,
		Email:       auth.Email,
		Scopes:      auth.Scopes,
		IsStaff:     auth.IsStaff,
		IsSuperuser: auth.IsSuperuser,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, key, data, authCacheTTL).Err()
}
