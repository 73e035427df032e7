package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Recipe service errors.
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title too long")
	ErrLinkTooLong        = errors.New("link too long")
	ErrInvalidTimeMinutes = errors.New("time_minutes must not be negative")
	ErrInvalidPrice       = errors.New("price must fit NUMERIC(5,2) and not be negative")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name too long")
)

const (
	maxTitleLength = 255
	maxLinkLength  = 255
	maxNameLength  = 255
)

// RecipeService handles recipe business logic, including tag and
// ingredient association management.
type RecipeService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.Repository, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateRecipeInput defines input for creating a recipe.
// Tags and Ingredients are names; missing ones are created for the user.
type CreateRecipeInput struct {
	UserID      string
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Description string
	Tags        []string
	Ingredients []string
}

// CreateRecipe creates a recipe owned by the user, resolving tag and
// ingredient names with get-or-create semantics.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if err := validateRecipeFields(input.Title, input.TimeMinutes, input.Price, input.Link); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		ID:          ulid.Make().String(),
		UserID:      input.UserID,
		Title:       strings.TrimSpace(input.Title),
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        input.Link,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	if err := s.replaceTags(ctx, recipe, input.Tags); err != nil {
		return nil, err
	}
	if err := s.replaceIngredients(ctx, recipe, input.Ingredients); err != nil {
		return nil, err
	}

	s.metrics.IncRecipeCreated()

	return recipe, nil
}

// GetRecipe retrieves a recipe with its associations.
// A recipe owned by someone else reports not found.
func (s *RecipeService) GetRecipe(ctx context.Context, id, userID string) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.loadAssociations(ctx, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}

	return recipe, nil
}

// ListRecipesInput defines input for listing recipes.
type ListRecipesInput struct {
	UserID        string
	Cursor        string
	Limit         int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListRecipesOutput defines output for listing recipes.
type ListRecipesOutput struct {
	Recipes    []*model.Recipe
	NextCursor string
	HasMore    bool
}

// ListRecipes retrieves the user's recipes, newest first, with
// associations attached in one batch per relation.
func (s *RecipeService) ListRecipes(ctx context.Context, input ListRecipesInput) (*ListRecipesOutput, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}

	filter := repository.RecipeFilter{
		UserID:        input.UserID,
		CreatedAfter:  input.CreatedAfter,
		CreatedBefore: input.CreatedBefore,
	}

	recipes, nextCursor, err := s.repo.ListRecipes(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	if err := s.loadAssociations(ctx, recipes); err != nil {
		return nil, err
	}

	return &ListRecipesOutput{
		Recipes:    recipes,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// UpdateRecipeInput defines input for updating a recipe.
// Nil scalar fields are left unchanged. A nil Tags or Ingredients
// pointer leaves associations untouched; a pointer to an empty slice
// clears them; a pointer to names replaces them.
type UpdateRecipeInput struct {
	ID          string
	UserID      string
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Description *string
	Tags        *[]string
	Ingredients *[]string
}

// UpdateRecipe updates a recipe's fields and associations.
// Ownership never changes, regardless of input.
func (s *RecipeService) UpdateRecipe(ctx context.Context, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, input.ID, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		recipe.Title = strings.TrimSpace(*input.Title)
	}
	if input.TimeMinutes != nil {
		recipe.TimeMinutes = *input.TimeMinutes
	}
	if input.Price != nil {
		recipe.Price = *input.Price
	}
	if input.Link != nil {
		recipe.Link = *input.Link
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}

	if err := validateRecipeFields(recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link); err != nil {
		return nil, err
	}

	recipe.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if input.Tags != nil {
		if err := s.replaceTags(ctx, recipe, *input.Tags); err != nil {
			return nil, err
		}
	}
	if input.Ingredients != nil {
		if err := s.replaceIngredients(ctx, recipe, *input.Ingredients); err != nil {
			return nil, err
		}
	}

	if err := s.loadAssociations(ctx, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}

	s.metrics.IncRecipeUpdated()

	return recipe, nil
}

// DeleteRecipe permanently removes a recipe and its association rows.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteRecipe(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

// replaceTags resolves tag names and rewrites the recipe's tag set.
func (s *RecipeService) replaceTags(ctx context.Context, recipe *model.Recipe, names []string) error {
	names, err := cleanNames(names)
	if err != nil {
		return err
	}

	tags := make([]*model.Tag, 0, len(names))
	ids := make([]string, 0, len(names))
	for _, name := range names {
		tag, err := s.repo.GetOrCreateTag(ctx, recipe.UserID, name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
		ids = append(ids, tag.ID)
	}

	if err := s.repo.SetRecipeTags(ctx, recipe.ID, ids); err != nil {
		return err
	}

	recipe.Tags = tags
	return nil
}

// replaceIngredients resolves ingredient names and rewrites the
// recipe's ingredient set.
func (s *RecipeService) replaceIngredients(ctx context.Context, recipe *model.Recipe, names []string) error {
	names, err := cleanNames(names)
	if err != nil {
		return err
	}

	ingredients := make([]*model.Ingredient, 0, len(names))
	ids := make([]string, 0, len(names))
	for _, name := range names {
		ingredient, err := s.repo.GetOrCreateIngredient(ctx, recipe.UserID, name)
		if err != nil {
			return err
		}
		ingredients = append(ingredients, ingredient)
		ids = append(ids, ingredient.ID)
	}

	if err := s.repo.SetRecipeIngredients(ctx, recipe.ID, ids); err != nil {
		return err
	}

	recipe.Ingredients = ingredients
	return nil
}

// loadAssociations attaches tags and ingredients to recipes in two
// batched queries.
func (s *RecipeService) loadAssociations(ctx context.Context, recipes []*model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]string, len(recipes))
	for i, recipe := range recipes {
		ids[i] = recipe.ID
	}

	tagsByRecipe, err := s.repo.GetTagsForRecipes(ctx, ids)
	if err != nil {
		return err
	}
	ingredientsByRecipe, err := s.repo.GetIngredientsForRecipes(ctx, ids)
	if err != nil {
		return err
	}

	for _, recipe := range recipes {
		recipe.Tags = tagsByRecipe[recipe.ID]
		recipe.Ingredients = ingredientsByRecipe[recipe.ID]
		if recipe.Tags == nil {
			recipe.Tags = []*model.Tag{}
		}
		if recipe.Ingredients == nil {
			recipe.Ingredients = []*model.Ingredient{}
		}
	}

	return nil
}

// validateRecipeFields checks scalar recipe constraints.
func validateRecipeFields(title string, timeMinutes int, price decimal.Decimal, link string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if timeMinutes < 0 {
		return ErrInvalidTimeMinutes
	}
	if !model.PriceFits(price) {
		return ErrInvalidPrice
	}
	if len(link) > maxLinkLength {
		return ErrLinkTooLong
	}
	return nil
}

// cleanNames trims, validates, and dedupes association names while
// preserving their order.
func cleanNames(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if len(name) > maxNameLength {
			return nil, fmt.Errorf("%w: %q", ErrNameTooLong, name)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
