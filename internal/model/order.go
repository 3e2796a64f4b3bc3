package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order represents a customer order.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	StoreID     string          `json:"storeId" db:"store_id"`
	Status      OrderStatus     `json:"orderStatus" db:"order_status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderDetail represents a line item in an order.
type OrderDetail struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"-" db:"order_id"`
	VariantID       string          `json:"variantId" db:"variant_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase" db:"price_at_purchase"`
}

// OrderStatusRequest represents the request payload for a status change.
type OrderStatusRequest struct {
	Status       OrderStatus `json:"status"`
	StoreContext string      `json:"storeContext"`
	CartID       *uuid.UUID  `json:"cartId,omitempty"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	*Order
	Details []OrderDetail `json:"details"`
}
