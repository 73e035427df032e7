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

// TagHandler handles HTTP requests for tag operations.
type TagHandler struct {
	svc    *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.UpsertTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	tag, err := h.svc.CreateTag(r.Context(), authCtx.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_created",
		"tag_id", tag.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToTagResponse(tag))
}

// List handles GET /api/v1/tags.
// The assigned_only query parameter restricts the listing to tags
// attached to at least one recipe.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	assignedOnly := r.URL.Query().Get("assigned_only") == "1"

	tags, err := h.svc.ListTags(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTagListResponse(tags))
}

// Get handles GET /api/v1/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Tag ID is required")
		return
	}

	tag, err := h.svc.GetTag(r.Context(), id, authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTagResponse(tag))
}

// Update handles PATCH /api/v1/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Tag ID is required")
		return
	}

	var req dto.UpsertTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	tag, err := h.svc.UpdateTag(r.Context(), id, authCtx.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_updated",
		"tag_id", tag.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToTagResponse(tag))
}

// Delete handles DELETE /api/v1/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Tag ID is required")
		return
	}

	if err := h.svc.DeleteTag(r.Context(), id, authCtx.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_deleted",
		"tag_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps tag service errors to HTTP responses.
func (h *TagHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		h.writeError(w, http.StatusNotFound, "TAG_NOT_FOUND", "Tag not found")
	case errors.Is(err, service.ErrTagExists):
		h.writeError(w, http.StatusConflict, "TAG_EXISTS", "Tag with this name already exists")
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
func (h *TagHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
