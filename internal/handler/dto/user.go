package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// RegisterUserRequest represents the request body for registration.
// Email format and emptiness are checked by the service so the error
// messages stay consistent with the rest of the validation.
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty" validate:"max=255"`
}

// UpdateProfileRequest represents the request body for PATCH /users/me.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty"`
}

// UserResponse represents a user in API responses.
// The password hash never leaves the model layer.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	IsActive  bool       `json:"is_active"`
	IsStaff   bool       `json:"is_staff"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AdminUserResponse extends UserResponse with superuser visibility.
type AdminUserResponse struct {
	UserResponse
	IsSuperuser bool      `json:"is_superuser"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetUserFlagsRequest represents the admin request to toggle flags.
type SetUserFlagsRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsStaff  *bool `json:"is_staff,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsActive:  user.IsActive,
		IsStaff:   user.IsStaff,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

// ToAdminUserResponse converts a User model to AdminUserResponse DTO.
func ToAdminUserResponse(user *model.User) *AdminUserResponse {
	return &AdminUserResponse{
		UserResponse: *ToUserResponse(user),
		IsSuperuser:  user.IsSuperuser,
		UpdatedAt:    user.UpdatedAt,
	}
}
