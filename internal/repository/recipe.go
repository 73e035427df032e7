package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for recipe repository operations.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrInvalidCursor  = errors.New("invalid pagination cursor")
)

// RecipeFilter defines filters for listing recipes.
// UserID is mandatory: listings are always scoped to the owner.
type RecipeFilter struct {
	UserID        string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

const recipeColumns = `id, user_id, title, time_minutes, price::text, link, description, created_at, updated_at`

// CreateRecipe inserts a new recipe into the database.
// Associations are managed separately via SetRecipeTags / SetRecipeIngredients.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		INSERT INTO recipes (id, user_id, title, time_minutes, price, link, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price.StringFixed(model.PriceDecimalPlaces),
		recipe.Link,
		recipe.Description,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

// GetRecipeByID retrieves a recipe owned by the given user.
// Asking for another user's recipe reports not found, never forbidden.
func (r *Repository) GetRecipeByID(ctx context.Context, id, userID string) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1 AND user_id = $2`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	return recipe, nil
}

// ListRecipes retrieves a paginated list of recipes, newest first.
func (r *Repository) ListRecipes(ctx context.Context, filter RecipeFilter, cursor string, limit int) ([]*model.Recipe, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = $1`
	args := []any{filter.UserID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	if filter.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}

	if filter.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.CreatedBefore)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating recipes: %w", err)
	}

	var nextCursor string
	if len(recipes) > limit {
		recipes = recipes[:limit] // Remove extra row
		last := recipes[len(recipes)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return recipes, nextCursor, nil
}

// UpdateRecipe updates a recipe's mutable fields. The owner column is
// never part of the SET list, so ownership cannot change.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	query := `
		UPDATE recipes
		SET title = $3, time_minutes = $4, price = $5, link = $6, description = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price.StringFixed(model.PriceDecimalPlaces),
		recipe.Link,
		recipe.Description,
		recipe.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// DeleteRecipe removes a recipe owned by the given user.
// Association rows cascade at the database level.
func (r *Repository) DeleteRecipe(ctx context.Context, id, userID string) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// SetRecipeTags replaces a recipe's tag associations with the given set.
// An empty slice clears all associations.
func (r *Repository) SetRecipeTags(ctx context.Context, recipeID string, tagIDs []string) error {
	return r.setRecipeAssociations(ctx, "recipe_tags", "tag_id", recipeID, tagIDs)
}

// SetRecipeIngredients replaces a recipe's ingredient associations.
func (r *Repository) SetRecipeIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error {
	return r.setRecipeAssociations(ctx, "recipe_ingredients", "ingredient_id", recipeID, ingredientIDs)
}

// setRecipeAssociations rewrites one join table for a recipe inside a transaction.
func (r *Repository) setRecipeAssociations(ctx context.Context, table, column, recipeID string, ids []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, table), recipeID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (recipe_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, column)
	for _, id := range ids {
		if _, err := tx.Exec(ctx, insert, recipeID, id); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit associations: %w", err)
	}

	return nil
}

// GetTagsForRecipes loads tag associations for a batch of recipes,
// keyed by recipe ID and ordered by tag name.
func (r *Repository) GetTagsForRecipes(ctx context.Context, recipeIDs []string) (map[string][]*model.Tag, error) {
	query := `
		SELECT rt.recipe_id, t.id, t.user_id, t.name, t.created_at
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name DESC, t.id
	`

	rows, err := r.pool.Query(ctx, query, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for recipes: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]*model.Tag)
	for rows.Next() {
		var recipeID string
		var tag model.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		result[recipeID] = append(result[recipeID], &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe tags: %w", err)
	}

	return result, nil
}

// GetIngredientsForRecipes loads ingredient associations for a batch of
// recipes, keyed by recipe ID and ordered by ingredient name.
func (r *Repository) GetIngredientsForRecipes(ctx context.Context, recipeIDs []string) (map[string][]*model.Ingredient, error) {
	query := `
		SELECT ri.recipe_id, i.id, i.user_id, i.name, i.created_at
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY i.name DESC, i.id
	`

	rows, err := r.pool.Query(ctx, query, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredients for recipes: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]*model.Ingredient)
	for rows.Next() {
		var recipeID string
		var ingredient model.Ingredient
		if err := rows.Scan(&recipeID, &ingredient.ID, &ingredient.UserID, &ingredient.Name, &ingredient.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		result[recipeID] = append(result[recipeID], &ingredient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe ingredients: %w", err)
	}

	return result, nil
}

// scanRecipe scans a single row into a Recipe model.
func scanRecipe(row pgx.Row) (*model.Recipe, error) {
	var recipe model.Recipe
	var priceText string
	err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.TimeMinutes,
		&priceText,
		&recipe.Link,
		&recipe.Description,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", priceText, err)
	}
	recipe.Price = price

	return &recipe, nil
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
