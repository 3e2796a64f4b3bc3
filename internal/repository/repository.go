package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogRepository defines data access for stores, products and variants.
type CatalogRepository interface {
	// ListProducts retrieves products with pagination support.
	ListProducts(ctx context.Context, q Querier, limit, offset int) ([]model.Product, error)

	// GetVariant retrieves a variant joined with its product's live price.
	// Returns nil when the variant does not exist.
	GetVariant(ctx context.Context, q Querier, id string) (*model.PricedVariant, error)

	// GetVariants retrieves several priced variants keyed by variant ID.
	GetVariants(ctx context.Context, q Querier, ids []string) (map[string]model.PricedVariant, error)

	// UpdateVariant applies staff edits to size/colour. Returns nil when missing.
	UpdateVariant(ctx context.Context, q Querier, id string, upd model.VariantUpdate) (*model.ProductVariant, error)

	// UpdateProductPrice sets a product's live price. Returns nil when missing.
	UpdateProductPrice(ctx context.Context, q Querier, id string, price decimal.Decimal) (*model.Product, error)

	// StoreExists reports whether a store with the given ID is seeded.
	StoreExists(ctx context.Context, q Querier, id string) (bool, error)

	// UpsertStore inserts or updates a store.
	UpsertStore(ctx context.Context, q Querier, store model.Store) error

	// UpsertProduct inserts or updates a product.
	UpsertProduct(ctx context.Context, q Querier, product model.Product) error

	// UpsertVariant inserts or updates a variant.
	UpsertVariant(ctx context.Context, q Querier, variant model.ProductVariant) error
}

// InventoryRepository defines the single update path for stock records.
type InventoryRepository interface {
	// GetByID retrieves an inventory row. Returns nil when missing.
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Inventory, error)

	// GetByStoreVariant retrieves the row for a store and variant. Returns nil when missing.
	GetByStoreVariant(ctx context.Context, q Querier, storeID, variantID string) (*model.Inventory, error)

	// ApplyDelta adds delta to the quantity of row id.
	// Returns model.ErrInsufficientStock when the result would be negative and
	// model.ErrInventoryNotFound when the row does not exist.
	ApplyDelta(ctx context.Context, q Querier, id uuid.UUID, delta int) (*model.Inventory, error)

	// ApplyDeltaAt is ApplyDelta addressed by store and variant.
	ApplyDeltaAt(ctx context.Context, q Querier, storeID, variantID string, delta int) (*model.Inventory, error)

	// Update sets quantity and/or status. Returns model.ErrInventoryNotFound when missing.
	Update(ctx context.Context, q Querier, id uuid.UUID, quantity *int, status *model.InventoryStatus) (*model.Inventory, error)

	// Upsert inserts or replaces the row for (store, product, variant).
	Upsert(ctx context.Context, q Querier, inv model.Inventory) error
}

// CartRepository defines data access for virtual carts and their items.
type CartRepository interface {
	// Create inserts a new cart.
	Create(ctx context.Context, q Querier, cart *model.VirtualCart) error

	// GetByID retrieves a cart with its items. Returns nil when missing.
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.VirtualCart, error)

	// GetForUpdate is GetByID holding a row lock on the cart until the transaction ends.
	GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*model.VirtualCart, error)

	// LockOwnerScope serialises find-or-create for one (user, store) pair
	// until the transaction ends.
	LockOwnerScope(ctx context.Context, q Querier, userID, storeID string) error

	// FindActiveByOwner retrieves the newest cart of userID in storeID that is
	// still valid at now. Returns nil when none.
	FindActiveByOwner(ctx context.Context, q Querier, userID, storeID string, now time.Time) (*model.VirtualCart, error)

	// ExtendExpiry moves the expiry of a cart.
	ExtendExpiry(ctx context.Context, q Querier, id uuid.UUID, expiresAt time.Time) error

	// SetOwner attaches userID to a cart.
	SetOwner(ctx context.Context, q Querier, id uuid.UUID, userID string) error

	// Delete removes a cart and, by cascade, its items.
	Delete(ctx context.Context, q Querier, id uuid.UUID) (bool, error)

	// DeleteExpired removes every cart whose expiry is at or before now.
	DeleteExpired(ctx context.Context, q Querier, now time.Time) (int64, error)

	// AddItem inserts a cart line.
	AddItem(ctx context.Context, q Querier, item *model.CartItem) error

	// AddItemIfAbsent inserts a cart line unless the cart already has a line
	// for the same variant. Reports whether a row was inserted.
	AddItemIfAbsent(ctx context.Context, q Querier, item *model.CartItem) (bool, error)

	// UpdateItemQuantity sets a line quantity. Reports whether the line exists.
	UpdateItemQuantity(ctx context.Context, q Querier, cartID, itemID uuid.UUID, quantity int) (bool, error)

	// DeleteItem removes a line. Reports whether the line existed.
	DeleteItem(ctx context.Context, q Querier, cartID, itemID uuid.UUID) (bool, error)

	// CountItems returns the number of lines in a cart.
	CountItems(ctx context.Context, q Querier, cartID uuid.UUID) (int, error)
}

// FittingRepository defines data access for fitting carts and room requests.
type FittingRepository interface {
	// Create inserts a new fitting cart.
	Create(ctx context.Context, q Querier, cart *model.FittingCart) error

	// GetByID retrieves a fitting cart with its requests. Returns nil when missing.
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.FittingCart, error)

	// AddRequest inserts a room request.
	AddRequest(ctx context.Context, q Querier, req *model.FittingRoomRequest) error

	// GetRequest retrieves a request and its cart (without requests). Returns nils when missing.
	GetRequest(ctx context.Context, q Querier, id uuid.UUID) (*model.FittingRoomRequest, *model.FittingCart, error)

	// AssignRoom sets or overwrites the fitting room of a request. Returns nil when missing.
	AssignRoom(ctx context.Context, q Querier, id uuid.UUID, roomID string) (*model.FittingRoomRequest, error)

	// TransitionStatus moves a request from one status to another.
	// Returns nil when the request is not currently in from.
	TransitionStatus(ctx context.Context, q Querier, id uuid.UUID, from, to model.FittingStatus) (*model.FittingRoomRequest, error)

	// DeleteRequest hard deletes a request. Reports whether it existed.
	DeleteRequest(ctx context.Context, q Querier, id uuid.UUID) (bool, error)

	// CountRoomUsage counts other pending requests in storeID that use roomID.
	CountRoomUsage(ctx context.Context, q Querier, storeID, roomID string, exclude uuid.UUID) (int, error)

	// ListPendingByStore lists pending requests of a store with duplicate room flags.
	ListPendingByStore(ctx context.Context, q Querier, storeID string) ([]model.StoreFittingRequest, error)

	// DeleteExpired removes fitting carts whose expiry is at or before now.
	DeleteExpired(ctx context.Context, q Querier, now time.Time) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order.
	CreateOrder(ctx context.Context, q Querier, order *model.Order) error

	// CreateOrderDetails inserts multiple order lines.
	CreateOrderDetails(ctx context.Context, q Querier, details []model.OrderDetail) error

	// GetByID retrieves an order by its ID along with its lines. Returns nils when missing.
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Order, []model.OrderDetail, error)

	// TransitionStatus moves an order from one status to another.
	// Returns nil when the order is not currently in from.
	TransitionStatus(ctx context.Context, q Querier, id uuid.UUID, from, to model.OrderStatus, at time.Time) (*model.Order, error)
}
