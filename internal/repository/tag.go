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

// Common errors for tag repository operations.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

// GetOrCreateTag finds a tag by name for the user, creating it if missing.
// Names are unique per user, so a concurrent insert is resolved by
// re-reading after a unique violation.
func (r *Repository) GetOrCreateTag(ctx context.Context, userID, name string) (*model.Tag, error) {
	tag, err := r.getTagByName(ctx, userID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return nil, err
	}

	tag = &model.Tag{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			// Lost the race, the winner's row is what we want.
			return r.getTagByName(ctx, userID, name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return tag, nil
}

// CreateTag inserts a new tag, failing if the name is taken for the user.
func (r *Repository) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := `INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrTagExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetTagByID retrieves a tag owned by the given user.
func (r *Repository) GetTagByID(ctx context.Context, id, userID string) (*model.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE id = $1 AND user_id = $2`

	tag, err := scanTag(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by ID: %w", err)
	}

	return tag, nil
}

// ListTagsByUserID retrieves all of a user's tags, name descending.
// When assignedOnly is set, only tags attached to at least one recipe
// are returned.
func (r *Repository) ListTagsByUserID(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.tag_id = tags.id)`
	}
	query += ` ORDER BY name DESC, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// UpdateTag renames a tag owned by the given user.
func (r *Repository) UpdateTag(ctx context.Context, id, userID, name string) (*model.Tag, error) {
	query := `UPDATE tags SET name = $3 WHERE id = $1 AND user_id = $2 RETURNING id, user_id, name, created_at`

	tag, err := scanTag(r.pool.QueryRow(ctx, query, id, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrTagExists
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes a tag owned by the given user.
// Join rows referencing it cascade at the database level.
func (r *Repository) DeleteTag(ctx context.Context, id, userID string) error {
	query := `DELETE FROM tags WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}

	return nil
}

func (r *Repository) getTagByName(ctx context.Context, userID, name string) (*model.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 AND name = $2`

	tag, err := scanTag(r.pool.QueryRow(ctx, query, userID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}

	return tag, nil
}

func scanTag(row pgx.Row) (*model.Tag, error) {
	var tag model.Tag
	if err := row.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}
