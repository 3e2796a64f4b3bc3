package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpiringCart is the behaviour virtual and fitting carts share.
type ExpiringCart interface {
	// Store returns the store the cart is scoped to.
	Store() string

	// ExpiredAt reports whether the cart is no longer valid at now.
	ExpiredAt(now time.Time) bool
}

// VirtualCart is a store scoped shopping cart.
type VirtualCart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Owner     Owner      `json:"userId" db:"user_id"`
	StoreID   string     `json:"storeId" db:"store_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	Items     []CartItem `json:"items"`
}

// Store implements ExpiringCart.
func (c *VirtualCart) Store() string { return c.StoreID }

// ExpiredAt implements ExpiringCart. A cart is valid only while now < expires_at.
func (c *VirtualCart) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Total sums quantity × price snapshot over all lines.
func (c *VirtualCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// HasVariant reports whether the cart already has a line for variantID.
func (c *VirtualCart) HasVariant(variantID string) bool {
	for _, item := range c.Items {
		if item.VariantID == variantID {
			return true
		}
	}
	return false
}

// CartItem is a line of a virtual cart.
type CartItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CartID      uuid.UUID       `json:"-" db:"cart_id"`
	VariantID   string          `json:"variantId" db:"variant_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	PriceAtTime decimal.Decimal `json:"priceAtTime" db:"price_at_time"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal is quantity × price snapshot.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartRequest is the payload for creating or reusing a virtual cart.
type CartRequest struct {
	StoreID string `json:"storeId"`
}

// CartItemRequest is the payload for adding a cart line.
type CartItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CartItemUpdateRequest is the payload for changing a line quantity.
type CartItemUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is a cart with its computed total.
type CartResponse struct {
	*VirtualCart
	Total decimal.Decimal `json:"total"`
}

// NewCartResponse wraps cart with its total.
func NewCartResponse(cart *VirtualCart) *CartResponse {
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return &CartResponse{VirtualCart: cart, Total: cart.Total()}
}
