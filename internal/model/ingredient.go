// Package model defines domain entities for the application.
package model

import "time"

// Ingredient has the same shape and lifecycle as Tag: owned by one user,
// unique per (user, name), created implicitly during recipe writes.
type Ingredient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
