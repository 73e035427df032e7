package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// IngredientHandler handles HTTP requests for ingredient operations.
type IngredientHandler struct {
	svc    *service.IngredientService
	logger *slog.Logger
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(svc *service.IngredientService, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/ingredients.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.UpsertIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ingredient, err := h.svc.CreateIngredient(r.Context(), authCtx.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_created",
		"ingredient_id", ingredient.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToIngredientResponse(ingredient))
}

// List handles GET /api/v1/ingredients.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	assignedOnly := r.URL.Query().Get("assigned_only") == "1"

	ingredients, err := h.svc.ListIngredients(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIngredientListResponse(ingredients))
}

// Get handles GET /api/v1/ingredients/{id}.
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Ingredient ID is required")
		return
	}

	ingredient, err := h.svc.GetIngredient(r.Context(), id, authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIngredientResponse(ingredient))
}

// Update handles PATCH /api/v1/ingredients/{id}.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Ingredient ID is required")
		return
	}

	var req dto.UpsertIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ingredient, err := h.svc.UpdateIngredient(r.Context(), id, authCtx.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_updated",
		"ingredient_id", ingredient.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToIngredientResponse(ingredient))
}

// Delete handles DELETE /api/v1/ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Ingredient ID is required")
		return
	}

	if err := h.svc.DeleteIngredient(r.Context(), id, authCtx.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_deleted",
		"ingredient_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps ingredient service errors to HTTP responses.
func (h *IngredientHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrIngredientNotFound):
		h.writeError(w, http.StatusNotFound, "INGREDIENT_NOT_FOUND", "Ingredient not found")
	case errors.Is(err, service.ErrIngredientExists):
		h.writeError(w, http.StatusConflict, "INGREDIENT_EXISTS", "Ingredient with this name already exists")
	case errors.Is(err, service.ErrNameRequired):
		h.writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Name is required")
	case errors.Is(err, service.ErrNameTooLong):
		h.writeError(w, http.StatusBadRequest, "NAME_TOO_LONG", "Name exceeds maximum length")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *IngredientHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
