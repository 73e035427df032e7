package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/recipebox/recipebox/internal/model"
)

// NamedRef references a tag or ingredient by name in a recipe payload.
// Unknown names are created for the requesting user.
type NamedRef struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []NamedRef      `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients []NamedRef      `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Absent fields are left unchanged. Tags and Ingredients distinguish
// absent (nil) from empty (clear associations).
type UpdateRecipeRequest struct {
	Title       *string          `json:"title,omitempty"`
	TimeMinutes *int             `json:"time_minutes,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Link        *string          `json:"link,omitempty"`
	Description *string          `json:"description,omitempty"`
	Tags        *[]NamedRef      `json:"tags,omitempty" validate:"omitempty,dive"`
	Ingredients *[]NamedRef      `json:"ingredients,omitempty" validate:"omitempty,dive"`
}

// RecipeResponse represents a recipe in API responses.
type RecipeResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       decimal.Decimal      `json:"price"`
	Link        string               `json:"link,omitempty"`
	Description string               `json:"description,omitempty"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RecipeListItem represents a recipe in the list endpoint.
// The detail-only fields (description, link) are omitted.
type RecipeListItem struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       decimal.Decimal      `json:"price"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// RecipeListResponse represents a paginated list of recipes.
type RecipeListResponse struct {
	Data       []RecipeListItem `json:"data"`
	Pagination *Pagination      `json:"pagination"`
}

// Names flattens a NamedRef slice into plain names.
func Names(refs []NamedRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
func ToRecipeResponse(recipe *model.Recipe) *RecipeResponse {
	return &RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Description: recipe.Description,
		Tags:        toTagResponses(recipe.Tags),
		Ingredients: toIngredientResponses(recipe.Ingredients),
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}
}

// ToRecipeListResponse converts Recipe models to RecipeListResponse.
func ToRecipeListResponse(recipes []*model.Recipe, nextCursor string, hasMore bool) *RecipeListResponse {
	items := make([]RecipeListItem, len(recipes))
	for i, recipe := range recipes {
		items[i] = RecipeListItem{
			ID:          recipe.ID,
			Title:       recipe.Title,
			TimeMinutes: recipe.TimeMinutes,
			Price:       recipe.Price,
			Tags:        toTagResponses(recipe.Tags),
			Ingredients: toIngredientResponses(recipe.Ingredients),
			CreatedAt:   recipe.CreatedAt,
			UpdatedAt:   recipe.UpdatedAt,
		}
	}
	return &RecipeListResponse{
		Data: items,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
