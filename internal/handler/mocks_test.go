package handler

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) CreateOrReuse(ctx context.Context, actor model.Actor, storeID string) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Claim(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.CartItemRequest) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID, quantity int) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, cartID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, actor model.Actor, cartID, itemID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, actor, cartID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

// MockTransferService is a mock implementation of TransferService.
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, actor model.Actor, fittingCartID uuid.UUID, target *uuid.UUID) (*model.TransferResult, error) {
	args := m.Called(ctx, actor, fittingCartID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransferResult), args.Error(1)
}

func (m *MockTransferService) Checkout(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, actor, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockFittingService is a mock implementation of FittingService.
type MockFittingService struct {
	mock.Mock
}

func (m *MockFittingService) Create(ctx context.Context, actor model.Actor, storeID string) (*model.FittingCart, error) {
	args := m.Called(ctx, actor, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingCart), args.Error(1)
}

func (m *MockFittingService) Get(ctx context.Context, actor model.Actor, cartID uuid.UUID) (*model.FittingCart, error) {
	args := m.Called(ctx, actor, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingCart), args.Error(1)
}

func (m *MockFittingService) AddRequest(ctx context.Context, actor model.Actor, cartID uuid.UUID, req model.FittingRequestCreate) (*model.FittingRoomRequest, error) {
	args := m.Called(ctx, actor, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingRoomRequest), args.Error(1)
}

func (m *MockFittingService) AssignRoom(ctx context.Context, actor model.Actor, requestID uuid.UUID, roomID string) (*model.StoreFittingRequest, error) {
	args := m.Called(ctx, actor, requestID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoreFittingRequest), args.Error(1)
}

func (m *MockFittingService) SetStatus(ctx context.Context, actor model.Actor, requestID uuid.UUID, status model.FittingStatus) (*model.FittingRoomRequest, error) {
	args := m.Called(ctx, actor, requestID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingRoomRequest), args.Error(1)
}

func (m *MockFittingService) UpdateRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, upd model.FittingRequestUpdate) (*model.StoreFittingRequest, error) {
	args := m.Called(ctx, actor, requestID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoreFittingRequest), args.Error(1)
}

func (m *MockFittingService) Remove(ctx context.Context, actor model.Actor, requestID uuid.UUID) error {
	return m.Called(ctx, actor, requestID).Error(0)
}

func (m *MockFittingService) ListStoreRequests(ctx context.Context, actor model.Actor, storeID string) ([]model.StoreFittingRequest, error) {
	args := m.Called(ctx, actor, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoreFittingRequest), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req model.OrderStatusRequest) (*model.Order, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService.
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) Get(ctx context.Context, storeID, variantID string) (*model.Inventory, error) {
	args := m.Called(ctx, storeID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) Adjust(ctx context.Context, actor model.Actor, id uuid.UUID, delta int) (*model.Inventory, error) {
	args := m.Called(ctx, actor, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req model.InventoryUpdateRequest) (*model.Inventory, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) GetVariant(ctx context.Context, id string) (*model.PricedVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricedVariant), args.Error(1)
}

func (m *MockCatalogService) UpdateVariant(ctx context.Context, actor model.Actor, id string, upd model.VariantUpdate) (*model.ProductVariant, error) {
	args := m.Called(ctx, actor, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductVariant), args.Error(1)
}

func (m *MockCatalogService) UpdateProductPrice(ctx context.Context, actor model.Actor, id string, price decimal.Decimal) (*model.Product, error) {
	args := m.Called(ctx, actor, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
