package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// AdminHandler provides staff-only endpoints for account administration.
type AdminHandler struct {
	users  *service.UserService
	tokens *service.TokenService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService, tokens *service.TokenService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AdminUserListResponse represents the response for user listing.
type AdminUserListResponse struct {
	Users []dto.AdminUserResponse `json:"users"`
	Total int                     `json:"total"`
}

// ListUsers handles GET /api/v1/admin/users?email={fragment}
// Lists accounts, optionally filtered by email substring.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.ListUsers(ctx, service.ListUsersInput{
		EmailContains: r.URL.Query().Get("email"),
	})
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
		return
	}

	response := AdminUserListResponse{
		Users: make([]dto.AdminUserResponse, 0, len(users)),
		Total: len(users),
	}
	for _, user := range users {
		response.Users = append(response.Users, *dto.ToAdminUserResponse(user))
	}

	writeJSON(w, http.StatusOK, response)
}

// GetUser handles GET /api/v1/admin/users/{user_id}.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "user ID is required")
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		h.logger.Error("failed to get user", "error", err, "user_id", userID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAdminUserResponse(user))
}

// ListUserTokens handles GET /api/v1/admin/users/{user_id}/tokens.
// Lists the API tokens issued to an account, newest first.
func (h *AdminHandler) ListUserTokens(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "user ID is required")
		return
	}

	if _, err := h.users.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		h.logger.Error("failed to get user", "error", err, "user_id", userID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get user")
		return
	}

	tokens, err := h.tokens.ListTokens(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list user tokens", "error", err, "user_id", userID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list tokens")
		return
	}

	responses := make([]dto.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, *dto.ToTokenResponse(token))
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": responses})
}

// SetUserFlags handles PATCH /api/v1/admin/users/{user_id}.
// Toggles the is_active and is_staff flags on an account.
func (h *AdminHandler) SetUserFlags(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "user ID is required")
		return
	}

	var req dto.SetUserFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, err := h.users.SetUserFlags(r.Context(), service.SetUserFlagsInput{
		UserID:   userID,
		IsActive: req.IsActive,
		IsStaff:  req.IsStaff,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		h.logger.Error("failed to update user flags", "error", err, "user_id", userID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update user")
		return
	}

	h.logger.Info("user_flags_updated",
		"user_id", user.ID,
		"is_active", user.IsActive,
		"is_staff", user.IsStaff,
	)

	writeJSON(w, http.StatusOK, dto.ToAdminUserResponse(user))
}

// StatsResponse represents operational statistics.
type StatsResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// Stats handles GET /api/v1/admin/stats
// Returns basic operational statistics.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "recipebox",
		Version:   "1.0.0", // TODO: inject at build time
	}
	writeJSON(w, http.StatusOK, response)
}

// writeErrorJSON writes a JSON error response.
func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
