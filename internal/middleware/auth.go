package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
	JWTSecret  []byte
	Metrics    metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// Two credential kinds are accepted in the Authorization header:
// opaque API tokens (rk_ prefix) and session JWTs. The credential kind
// is decided by format, so the wrong kind never hits the wrong path.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			credential := extractCredential(r)
			if credential == "" {
				logAuthFailure(cfg.Logger, r, "missing_credential")
				writeAuthError(w)
				return
			}

			var authCtx *model.AuthContext
			if auth.IsTokenFormat(credential) {
				authCtx = authenticateToken(cfg, w, r, credential)
			} else {
				authCtx = authenticateSession(cfg, w, r, credential)
			}
			if authCtx == nil {
				// Failure already written
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticateToken verifies an opaque API token. The auth context is
// cached in Redis so the Argon2 verification and user load are skipped
// on repeat requests.
func authenticateToken(cfg AuthConfig, w http.ResponseWriter, r *http.Request, credential string) *model.AuthContext {
	parsed, err := auth.ParseToken(credential)
	if err != nil {
		logAuthFailure(cfg.Logger, r, "invalid_format")
		writeAuthError(w)
		return nil
	}

	// Check cache first
	cacheKey := auth.QuickHash(credential)
	authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey)
	if authCtx != nil {
		cfg.Metrics.IncAuthCacheHit()
		logAuthSuccess(cfg.Logger, r, authCtx, true)
		return authCtx
	}
	cfg.Metrics.IncAuthCacheMiss()

	// Cache miss - lookup candidates by prefix
	tokens, err := cfg.Repository.GetTokensByPrefix(r.Context(), parsed.Prefix)
	if err != nil {
		cfg.Logger.Error("database error during auth",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeAuthError(w)
		return nil
	}

	// Verify against each candidate (handles prefix collisions)
	var matched *model.Token
	for _, t := range tokens {
		match, err := auth.VerifyPassword(credential, t.TokenHash)
		if err != nil {
			continue
		}
		if match {
			matched = t
			break
		}
	}

	if matched == nil {
		logAuthFailure(cfg.Logger, r, "invalid_token")
		writeAuthError(w)
		return nil
	}

	user, err := cfg.Repository.GetUserByID(r.Context(), matched.UserID)
	if err != nil || !user.IsActive {
		logAuthFailure(cfg.Logger, r, "user_unavailable")
		writeAuthError(w)
		return nil
	}

	authCtx = &model.AuthContext{
		TokenID:     matched.ID,
		TokenPrefix: matched.TokenPrefix,
		UserID:      user.ID,
		Email:       user.Email,
		Scopes:      matched.Scopes,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}

	// Cache the result
	_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)

	// Update last_used_at asynchronously
	tokenID := matched.ID
	go func() {
		_ = cfg.Repository.UpdateTokenLastUsed(r.Context(), tokenID)
	}()

	logAuthSuccess(cfg.Logger, r, authCtx, false)
	return authCtx
}

// authenticateSession verifies a session JWT and loads the account.
// Sessions carry the default scopes; fine-grained scoping is a token
// feature.
func authenticateSession(cfg AuthConfig, w http.ResponseWriter, r *http.Request, credential string) *model.AuthContext {
	claims, err := auth.ParseSession(cfg.JWTSecret, credential)
	if err != nil {
		logAuthFailure(cfg.Logger, r, "invalid_session")
		writeAuthError(w)
		return nil
	}

	user, err := cfg.Repository.GetUserByID(r.Context(), claims.Subject)
	if err != nil || !user.IsActive {
		logAuthFailure(cfg.Logger, r, "user_unavailable")
		writeAuthError(w)
		return nil
	}

	authCtx := &model.AuthContext{
		UserID:      user.ID,
		Email:       user.Email,
		Scopes:      model.DefaultScopes(),
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}

	logAuthSuccess(cfg.Logger, r, authCtx, false)
	return authCtx
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func logAuthSuccess(logger *slog.Logger, r *http.Request, authCtx *model.AuthContext, cacheHit bool) {
	logger.Info("authentication successful",
		slog.String("token_prefix", authCtx.TokenPrefix),
		slog.String("user_id", authCtx.UserID),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Bool("cache_hit", cacheHit),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// extractCredential extracts the credential from the request.
// Supports "Authorization: Bearer <credential>" and, for compatibility
// with DRF-style clients, "Authorization: Token <credential>".
func extractCredential(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if strings.HasPrefix(authHeader, "Token ") {
		return strings.TrimPrefix(authHeader, "Token ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing credentials","code":"UNAUTHORIZED"}`))
}
