package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// UpsertIngredientRequest represents the request body for creating or
// renaming an ingredient.
type UpsertIngredientRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IngredientListResponse represents the ingredient listing.
type IngredientListResponse struct {
	Data []IngredientResponse `json:"data"`
}

// ToIngredientResponse converts an Ingredient model to its DTO.
func ToIngredientResponse(ingredient *model.Ingredient) *IngredientResponse {
	return &IngredientResponse{
		ID:        ingredient.ID,
		Name:      ingredient.Name,
		CreatedAt: ingredient.CreatedAt,
	}
}

// ToIngredientListResponse converts Ingredient models to the listing DTO.
func ToIngredientListResponse(ingredients []*model.Ingredient) *IngredientListResponse {
	return &IngredientListResponse{Data: toIngredientResponses(ingredients)}
}

func toIngredientResponses(ingredients []*model.Ingredient) []IngredientResponse {
	responses := make([]IngredientResponse, len(ingredients))
	for i, ingredient := range ingredients {
		responses[i] = *ToIngredientResponse(ingredient)
	}
	return responses
}
