// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// User service errors.
var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password must be at least 5 characters")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account is disabled")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 5

// UserService handles user account business logic.
type UserService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo *repository.Repository, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a new user account with a normalized email and a
// hashed password. The plaintext password is never stored.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email, err := validateEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate verifies an email and password pair.
// Lookup failure and password mismatch are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn comparable time so a missing account is not observable.
			_, _ = auth.HashPassword(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// UpdateProfileInput defines input for updating a user's own profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID   string
	Name     *string
	Password *string
}

// UpdateProfile updates a user's name and/or password.
// Email is immutable after registration.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if input.Password != nil {
		if len(*input.Password) < MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// RecordLogin stamps the user's last login time. Failures are not
// propagated to the login path.
func (s *UserService) RecordLogin(ctx context.Context, userID string) {
	_ = s.repo.UpdateUserLastLogin(ctx, userID, time.Now().UTC())
}

// ListUsersInput defines input for the admin user listing.
type ListUsersInput struct {
	EmailContains string
	Limit         int
}

// ListUsers retrieves users for staff review, newest first.
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) ([]*model.User, error) {
	if input.Limit <= 0 || input.Limit > 200 {
		input.Limit = 50
	}

	return s.repo.ListUsers(ctx, input.EmailContains, input.Limit)
}

// SetUserFlagsInput defines input for toggling account flags.
type SetUserFlagsInput struct {
	UserID   string
	IsActive *bool
	IsStaff  *bool
}

// SetUserFlags updates a user's active and staff flags.
// The superuser flag can only be granted out of band.
func (s *UserService) SetUserFlags(ctx context.Context, input SetUserFlagsInput) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUserFlags(ctx, user.ID, user.IsActive, user.IsStaff); err != nil {
		return nil, err
	}

	return user, nil
}

// validateEmail normalizes and validates an email address.
func validateEmail(email string) (string, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}

	return email, nil
}
