package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store is a physical or online shop that scopes inventory and carts.
type Store struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Product represents a catalogue product with its live price.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// ProductVariant is a sellable size/colour combination of a product.
type ProductVariant struct {
	ID        string `json:"id" db:"id"`
	ProductID string `json:"productId" db:"product_id"`
	Size      string `json:"size" db:"size"`
	Color     string `json:"color" db:"color"`
}

// PricedVariant is a variant joined with its product's current price.
type PricedVariant struct {
	ProductVariant
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
}

// VariantUpdate carries staff edits to variant attributes.
type VariantUpdate struct {
	Size  *string `json:"size,omitempty"`
	Color *string `json:"color,omitempty"`
}

// PriceUpdate carries a staff edit to a product's live price.
type PriceUpdate struct {
	Price decimal.Decimal `json:"price"`
}
