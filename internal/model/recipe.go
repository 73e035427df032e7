// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price limits mirror the NUMERIC(5,2) column: at most 999.99, two decimal places.
const (
	PriceMaxIntegerDigits = 3
	PriceDecimalPlaces    = 2
)

// Recipe represents a recipe owned by a single user.
// The owner is immutable after creation.
type Recipe struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"`
	Description string          `json:"description"`
	Tags        []*Tag          `json:"tags"`
	Ingredients []*Ingredient   `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PriceFits reports whether a price fits the stored precision.
func PriceFits(p decimal.Decimal) bool {
	if p.IsNegative() {
		return false
	}
	if !p.Equal(p.Round(PriceDecimalPlaces)) {
		return false
	}
	max := decimal.New(1, PriceMaxIntegerDigits) // 1000
	return p.LessThan(max)
}
