package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	svc    *service.RecipeService
	logger *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), service.CreateRecipeInput{
		UserID:      authCtx.UserID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Description: req.Description,
		Tags:        dto.Names(req.Tags),
		Ingredients: dto.Names(req.Ingredients),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_created",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
		"tag_count", len(recipe.Tags),
		"ingredient_count", len(recipe.Ingredients),
	)

	writeJSON(w, http.StatusCreated, dto.ToRecipeResponse(recipe))
}

// Get handles GET /api/v1/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Recipe ID is required")
		return
	}

	recipe, err := h.svc.GetRecipe(r.Context(), id, authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// List handles GET /api/v1/recipes.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	input := service.ListRecipesInput{
		UserID: authCtx.UserID,
		Cursor: query.Get("cursor"),
		Limit:  limit,
	}

	// Parse date filters
	if after := query.Get("created_after"); after != "" {
		if t, err := time.Parse(time.RFC3339, after); err == nil {
			input.CreatedAfter = &t
		}
	}
	if before := query.Get("created_before"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			input.CreatedBefore = &t
		}
	}

	result, err := h.svc.ListRecipes(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(result.Recipes, result.NextCursor, result.HasMore))
}

// Update handles PUT and PATCH /api/v1/recipes/{id}.
// Both verbs share partial-update semantics: absent fields keep their
// values, and a present tags or ingredients field replaces that set.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Recipe ID is required")
		return
	}

	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input := service.UpdateRecipeInput{
		ID:          id,
		UserID:      authCtx.UserID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Description: req.Description,
	}
	if req.Tags != nil {
		names := dto.Names(*req.Tags)
		input.Tags = &names
	}
	if req.Ingredients != nil {
		names := dto.Names(*req.Ingredients)
		input.Ingredients = &names
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_updated",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToRecipeResponse(recipe))
}

// Delete handles DELETE /api/v1/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Recipe ID is required")
		return
	}

	if err := h.svc.DeleteRecipe(r.Context(), id, authCtx.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_deleted",
		"recipe_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps recipe service errors to HTTP responses.
func (h *RecipeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		// Covers both missing and foreign recipes, preventing enumeration
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
	case errors.Is(err, service.ErrTitleRequired):
		h.writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		h.writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds maximum length")
	case errors.Is(err, service.ErrInvalidTimeMinutes):
		h.writeError(w, http.StatusBadRequest, "INVALID_TIME_MINUTES", "time_minutes must not be negative")
	case errors.Is(err, service.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be between 0 and 999.99 with at most 2 decimal places")
	case errors.Is(err, service.ErrLinkTooLong):
		h.writeError(w, http.StatusBadRequest, "LINK_TOO_LONG", "Link exceeds maximum length")
	case errors.Is(err, service.ErrNameRequired):
		h.writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Tag and ingredient names must not be empty")
	case errors.Is(err, service.ErrNameTooLong):
		h.writeError(w, http.StatusBadRequest, "NAME_TOO_LONG", "Tag or ingredient name exceeds maximum length")
	case errors.Is(err, service.ErrInvalidCursor):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *RecipeHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
