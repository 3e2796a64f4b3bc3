package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService defines the catalogue operations the cart core relies on.
type CatalogService interface {
	// ListProducts retrieves products with pagination.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetVariant retrieves a variant with its product's live price.
	GetVariant(ctx context.Context, id string) (*model.PricedVariant, error)

	// UpdateVariant applies staff edits to size/colour.
	UpdateVariant(ctx context.Context, actor model.Actor, id string, upd model.VariantUpdate) (*model.ProductVariant, error)

	// UpdateProductPrice sets a product's live price. Staff only.
	UpdateProductPrice(ctx context.Context, actor model.Actor, id string, price decimal.Decimal) (*model.Product, error)
}

// InventoryService defines operations on the inventory ledger.
type InventoryService interface {
	// GetByID retrieves an inventory row.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error)

	// Get retrieves the row for a store and variant.
	Get(ctx context.Context, storeID, variantID string) (*model.Inventory, error)

	// Adjust applies a relative stock change. Staff only.
	Adjust(ctx context.Context, actor model.Actor, id uuid.UUID, delta int) (*model.Inventory, error)

	// Update sets quantity and/or status. Staff only.
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req model.InventoryUpdateRequest) (*model.Inventory, error)
}

// CartService defines operations on virtual carts.
type CartService interface {
	// CreateOrReuse returns the caller's active cart in storeID, creating one
	// when none exists. Guests always get a new cart.
	CreateOrReuse(ctx context.Context, actor model.Actor, storeID string) (*model.CartResponse, error)

	// Get retrieves a cart with items and total.
	Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error)

	// Claim attaches the authenticated actor to a guest cart.
	Claim(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error)

	// AddItem appends a line priced at the variant's current price.
	AddItem(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.CartItemRequest) (*model.CartResponse, error)

	// UpdateItemQuantity sets a line quantity. A quantity below one removes
	// the line. Returns nil when the cart was deleted as a result.
	UpdateItemQuantity(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID, quantity int) (*model.CartResponse, error)

	// RemoveItem deletes a line. Returns nil when the cart was deleted as a result.
	RemoveItem(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID) (*model.CartResponse, error)
}

// FittingService defines operations on fitting carts and room requests.
type FittingService interface {
	// Create starts a new fitting cart in storeID.
	Create(ctx context.Context, actor model.Actor, storeID string) (*model.FittingCart, error)

	// Get retrieves a fitting cart with its requests.
	Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.FittingCart, error)

	// AddRequest appends a pending request.
	AddRequest(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.FittingRequestCreate) (*model.FittingRoomRequest, error)

	// AssignRoom sets the fitting room of a request. Staff only.
	AssignRoom(ctx context.Context, actor model.Actor, requestID uuid.UUID, roomID string) (*model.StoreFittingRequest, error)

	// SetStatus moves a request to fulfilled or cancelled.
	SetStatus(ctx context.Context, actor model.Actor, requestID uuid.UUID, status model.FittingStatus) (*model.FittingRoomRequest, error)

	// UpdateRequest applies a room assignment and a status change together,
	// saving both or neither.
	UpdateRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, upd model.FittingRequestUpdate) (*model.StoreFittingRequest, error)

	// Remove hard deletes a request.
	Remove(ctx context.Context, actor model.Actor, requestID uuid.UUID) error

	// ListStoreRequests lists pending requests of a store. Staff only.
	ListStoreRequests(ctx context.Context, actor model.Actor, storeID string) ([]model.StoreFittingRequest, error)
}

// TransferService defines the conversions between carts and orders.
type TransferService interface {
	// Transfer merges a fitting cart into a virtual cart.
	Transfer(ctx context.Context, actor model.Actor, fittingCartID uuid.UUID, target *uuid.UUID) (*model.TransferResult, error)

	// Checkout converts a virtual cart into a pending order.
	Checkout(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.OrderResponse, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Get retrieves an order with its lines.
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus applies a requested status change.
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (*model.Order, error)
}
