// Package main is the entrypoint for the Recipebox API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/handler"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/server"
	"github.com/recipebox/recipebox/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, metricsRecorder)
	tokenService := service.NewTokenService(repo, cfg.TokenEnv(), metricsRecorder)
	sessionService := service.NewSessionService(userService, []byte(cfg.JWTSecret), cfg.SessionTTL, metricsRecorder)
	recipeService := service.NewRecipeService(repo, metricsRecorder)
	tagService := service.NewTagService(repo, metricsRecorder)
	ingredientService := service.NewIngredientService(repo, metricsRecorder)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	authHandler := handler.NewAuthHandler(userService, tokenService, sessionService, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	ingredientHandler := handler.NewIngredientHandler(ingredientService, logger)
	adminHandler := handler.NewAdminHandler(userService, tokenService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		health:      healthHandler,
		users:       userHandler,
		auth:        authHandler,
		recipes:     recipeHandler,
		tags:        tagHandler,
		ingredients: ingredientHandler,
		admin:       adminHandler,
		metrics:     metricsHandler,
		repo:        repo,
		cache:       cacheClient,
		recorder:    metricsRecorder,
		cfg:         cfg,
		logger:      logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health      *handler.HealthHandler
	users       *handler.UserHandler
	auth        *handler.AuthHandler
	recipes     *handler.RecipeHandler
	tags        *handler.TagHandler
	ingredients *handler.IngredientHandler
	admin       *handler.AdminHandler
	metrics     *handler.MetricsHandler
	repo        *repository.Repository
	cache       *cache.Cache
	recorder    metrics.Recorder
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	// Root info endpoint
	r.Get("/", handler.Hello)

	// Metrics endpoint
	r.Get("/metrics", d.metrics.Metrics)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     d.logger,
		Repository: d.repo,
		Cache:      d.cache,
		JWTSecret:  []byte(d.cfg.JWTSecret),
		Metrics:    d.recorder,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       d.logger,
		Cache:        d.cache,
		APIEnabled:   d.cfg.RateLimitAPIEnabled,
		APIPerMinute: d.cfg.RateLimitAPIPerMinute,
		APIBurst:     d.cfg.RateLimitAPIBurst,
		LoginEnabled: d.cfg.RateLimitLoginEnabled,
		LoginRPS:     d.cfg.RateLimitLoginRPS,
		LoginBurst:   d.cfg.RateLimitLoginBurst,
	}

	// Registration and credential exchange are open, with IP-based rate
	// limiting on the credential endpoints.
	r.Post("/api/v1/users", d.users.Register)
	r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/api/v1/auth/sessions", d.auth.CreateSession)
	r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/api/v1/auth/tokens", d.auth.CreateToken)

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply auth and rate limit middleware to all API routes
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		// Profile
		r.With(middleware.RequireRead()).Get("/users/me", d.users.Me)
		r.With(middleware.RequireWrite()).Patch("/users/me", d.users.UpdateMe)

		// API token management
		r.Route("/auth/tokens", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", d.auth.ListTokens)
			r.With(middleware.RequireWrite()).Delete("/{token_id}", d.auth.RevokeToken)
		})

		// Recipe management (requires write scope for mutations)
		r.Route("/recipes", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", d.recipes.List)
			r.With(middleware.RequireRead()).Get("/{recipe_id}", d.recipes.Get)
			r.With(middleware.RequireWrite()).Post("/", d.recipes.Create)
			r.With(middleware.RequireWrite()).Put("/{recipe_id}", d.recipes.Update)
			r.With(middleware.RequireWrite()).Patch("/{recipe_id}", d.recipes.Update)
			r.With(middleware.RequireWrite()).Delete("/{recipe_id}", d.recipes.Delete)
		})

		// Tag management
		r.Route("/tags", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", d.tags.List)
			r.With(middleware.RequireRead()).Get("/{tag_id}", d.tags.Get)
			r.With(middleware.RequireWrite()).Post("/", d.tags.Create)
			r.With(middleware.RequireWrite()).Put("/{tag_id}", d.tags.Update)
			r.With(middleware.RequireWrite()).Patch("/{tag_id}", d.tags.Update)
			r.With(middleware.RequireWrite()).Delete("/{tag_id}", d.tags.Delete)
		})

		// Ingredient management
		r.Route("/ingredients", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", d.ingredients.List)
			r.With(middleware.RequireRead()).Get("/{ingredient_id}", d.ingredients.Get)
			r.With(middleware.RequireWrite()).Post("/", d.ingredients.Create)
			r.With(middleware.RequireWrite()).Put("/{ingredient_id}", d.ingredients.Update)
			r.With(middleware.RequireWrite()).Patch("/{ingredient_id}", d.ingredients.Update)
			r.With(middleware.RequireWrite()).Delete("/{ingredient_id}", d.ingredients.Delete)
		})

		// User administration (staff only)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff())
			r.Get("/users", d.admin.ListUsers)
			r.Get("/users/{user_id}", d.admin.GetUser)
			r.Get("/users/{user_id}/tokens", d.admin.ListUserTokens)
			r.Patch("/users/{user_id}", d.admin.SetUserFlags)
			r.Get("/stats", d.admin.Stats)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
