package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Ingredient service errors.
var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient already exists")
)

// IngredientService handles ingredient business logic.
type IngredientService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewIngredientService creates a new IngredientService.
func NewIngredientService(repo *repository.Repository, recorder metrics.Recorder) *IngredientService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IngredientService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateIngredient creates a standalone ingredient for the user.
func (s *IngredientService) CreateIngredient(ctx context.Context, userID, name string) (*model.Ingredient, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, repository.ErrIngredientExists) {
			return nil, ErrIngredientExists
		}
		return nil, err
	}

	s.metrics.IncIngredientCreated()

	return ingredient, nil
}

// GetIngredient retrieves an ingredient owned by the user.
func (s *IngredientService) GetIngredient(ctx context.Context, id, userID string) (*model.Ingredient, error) {
	ingredient, err := s.repo.GetIngredientByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

// ListIngredients retrieves the user's ingredients, name descending.
func (s *IngredientService) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	return s.repo.ListIngredientsByUserID(ctx, userID, assignedOnly)
}

// UpdateIngredient renames an ingredient owned by the user.
func (s *IngredientService) UpdateIngredient(ctx context.Context, id, userID, name string) (*model.Ingredient, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	ingredient, err := s.repo.UpdateIngredient(ctx, id, userID, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrIngredientNotFound):
			return nil, ErrIngredientNotFound
		case errors.Is(err, repository.ErrIngredientExists):
			return nil, ErrIngredientExists
		}
		return nil, err
	}

	return ingredient, nil
}

// DeleteIngredient removes an ingredient owned by the user.
func (s *IngredientService) DeleteIngredient(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteIngredient(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return ErrIngredientNotFound
		}
		return err
	}
	return nil
}
