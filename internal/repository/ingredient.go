package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/model"
)

// Common errors for ingredient repository operations.
var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient already exists")
)

// GetOrCreateIngredient finds an ingredient by name for the user,
// creating it if missing. Concurrent inserts are resolved the same way
// as GetOrCreateTag.
func (r *Repository) GetOrCreateIngredient(ctx context.Context, userID, name string) (*model.Ingredient, error) {
	ingredient, err := r.getIngredientByName(ctx, userID, name)
	if err == nil {
		return ingredient, nil
	}
	if !errors.Is(err, ErrIngredientNotFound) {
		return nil, err
	}

	ingredient = &model.Ingredient{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO ingredients (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name, ingredient.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return r.getIngredientByName(ctx, userID, name)
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	return ingredient, nil
}

// CreateIngredient inserts a new ingredient, failing if the name is
// taken for the user.
func (r *Repository) CreateIngredient(ctx context.Context, ingredient *model.Ingredient) error {
	query := `INSERT INTO ingredients (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, ingredient.ID, ingredient.UserID, ingredient.Name, ingredient.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrIngredientExists
		}
		return fmt.Errorf("failed to create ingredient: %w", err)
	}

	return nil
}

// GetIngredientByID retrieves an ingredient owned by the given user.
func (r *Repository) GetIngredientByID(ctx context.Context, id, userID string) (*model.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients WHERE id = $1 AND user_id = $2`

	ingredient, err := scanIngredient(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}

	return ingredient, nil
}

// ListIngredientsByUserID retrieves all of a user's ingredients, name
// descending. When assignedOnly is set, only ingredients attached to at
// least one recipe are returned.
func (r *Repository) ListIngredientsByUserID(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients WHERE user_id = $1`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.ingredient_id = ingredients.id)`
	}
	query += ` ORDER BY name DESC, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*model.Ingredient
	for rows.Next() {
		ingredient, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ingredient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// UpdateIngredient renames an ingredient owned by the given user.
func (r *Repository) UpdateIngredient(ctx context.Context, id, userID, name string) (*model.Ingredient, error) {
	query := `UPDATE ingredients SET name = $3 WHERE id = $1 AND user_id = $2 RETURNING id, user_id, name, created_at`

	ingredient, err := scanIngredient(r.pool.QueryRow(ctx, query, id, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrIngredientExists
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}

	return ingredient, nil
}

// DeleteIngredient removes an ingredient owned by the given user.
func (r *Repository) DeleteIngredient(ctx context.Context, id, userID string) error {
	query := `DELETE FROM ingredients WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

func (r *Repository) getIngredientByName(ctx context.Context, userID, name string) (*model.Ingredient, error) {
	query := `SELECT id, user_id, name, created_at FROM ingredients WHERE user_id = $1 AND name = $2`

	ingredient, err := scanIngredient(r.pool.QueryRow(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient by name: %w", err)
	}

	return ingredient, nil
}

func scanIngredient(row pgx.Row) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := row.Scan(&ingredient.ID, &ingredient.UserID, &ingredient.Name, &ingredient.CreatedAt); err != nil {
		return nil, err
	}
	return &ingredient, nil
}
