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

// AuthHandler handles token issuance and session login endpoints.
type AuthHandler struct {
	users    *service.UserService
	tokens   *service.TokenService
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, tokens *service.TokenService, sessions *service.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// CreateToken handles POST /api/v1/auth/tokens.
// Open endpoint that exchanges email and password for a long-lived API
// token. Rate limited per IP like session login.
func (h *AuthHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Email, password and valid scopes (read, write) are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	issued, err := h.tokens.IssueToken(r.Context(), service.IssueTokenInput{
		UserID: user.ID,
		Name:   req.Name,
		Scopes: req.Scopes,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.users.RecordLogin(r.Context(), user.ID)

	h.logger.Info("token_issued",
		"token_id", issued.Token.ID,
		"token_prefix", issued.Token.TokenPrefix,
		"user_id", user.ID,
	)

	// The plaintext token is shown once only
	writeJSON(w, http.StatusCreated, dto.CreateTokenResponse{
		ID:          issued.Token.ID,
		Token:       issued.Plaintext,
		TokenPrefix: issued.Token.TokenPrefix,
		Name:        issued.Token.Name,
		Scopes:      issued.Token.Scopes,
		CreatedAt:   issued.Token.CreatedAt,
	})
}

// ListTokens handles GET /api/v1/auth/tokens.
func (h *AuthHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	tokens, err := h.tokens.ListTokens(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	responses := make([]dto.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, *dto.ToTokenResponse(token))
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": responses})
}

// RevokeToken handles DELETE /api/v1/auth/tokens/{token_id}.
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	tokenID := chi.URLParam(r, "token_id")
	if tokenID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Token ID is required")
		return
	}

	if err := h.tokens.RevokeToken(r.Context(), tokenID, authCtx.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("token_revoked",
		"token_id", tokenID,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// CreateSession handles POST /api/v1/auth/sessions.
// Open endpoint, rate limited per IP.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required")
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("session_created",
		"user_id", session.User.ID,
	)

	writeJSON(w, http.StatusCreated, dto.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.ToUserResponse(session.User),
	})
}

// handleServiceError maps auth service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidScope):
		h.writeError(w, http.StatusBadRequest, "INVALID_SCOPE", "Valid scopes: read, write")
	case errors.Is(err, service.ErrTokenNotFound):
		h.writeError(w, http.StatusNotFound, "TOKEN_NOT_FOUND", "Token not found or already revoked")
	case errors.Is(err, service.ErrInvalidCredentials):
		// One message for all credential failures to prevent enumeration
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUserDisabled):
		h.writeError(w, http.StatusForbidden, "USER_DISABLED", "Account is disabled")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
