package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// We store the unit price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price        string    `json:"price"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var ErrInvalidPrice = errors.New("invalid price")

// NormalizePrice parses a money string and renders it at scale 2.
// Rejects negatives and anything that is not a plain decimal.
func NormalizePrice(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", ErrInvalidPrice
	}
	if d.IsNegative() {
		return "", ErrInvalidPrice
	}
	return d.StringFixed(2), nil
}

// CreateCategoryRequest payload.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name string `json:"name" example:"Sembako"`
}

// CreateProductRequest payload.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name       string `json:"name"        example:"Beras 25kg"`
	Price      string `json:"price"       example:"250000.00"`
	CategoryID string `json:"category_id"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	CategoryID string `json:"category_id"`
}
