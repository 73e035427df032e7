// Package model defines domain entities for the application.
package model

import "time"

// Tag labels recipes. Uniqueness is scoped to the owning user:
// the same name for two users is two distinct rows.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
