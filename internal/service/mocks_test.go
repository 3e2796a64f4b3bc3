package service

import (
	"context"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - repositories are mocked so these are never reached
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockDB is a mock repository.DB whose Begin hands out a MockTx.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults  { return nil }

// expectCommit wires db.Begin to a fresh MockTx that expects a commit.
func expectCommit(db *MockDB) *MockTx {
	tx := new(MockTx)
	db.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Commit", mock.Anything).Return(nil)
	return tx
}

// expectRollback wires db.Begin to a fresh MockTx that expects a rollback.
func expectRollback(db *MockDB) *MockTx {
	tx := new(MockTx)
	db.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Rollback", mock.Anything).Return(nil)
	return tx
}

// MockCatalogRepository is a mock implementation of CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListProducts(ctx context.Context, q repository.Querier, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, q, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetVariant(ctx context.Context, q repository.Querier, id string) (*model.PricedVariant, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricedVariant), args.Error(1)
}

func (m *MockCatalogRepository) GetVariants(ctx context.Context, q repository.Querier, ids []string) (map[string]model.PricedVariant, error) {
	args := m.Called(ctx, q, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.PricedVariant), args.Error(1)
}

func (m *MockCatalogRepository) UpdateVariant(ctx context.Context, q repository.Querier, id string, upd model.VariantUpdate) (*model.ProductVariant, error) {
	args := m.Called(ctx, q, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductVariant), args.Error(1)
}

func (m *MockCatalogRepository) UpdateProductPrice(ctx context.Context, q repository.Querier, id string, price decimal.Decimal) (*model.Product, error) {
	args := m.Called(ctx, q, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogRepository) StoreExists(ctx context.Context, q repository.Querier, id string) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) UpsertStore(ctx context.Context, q repository.Querier, store model.Store) error {
	return m.Called(ctx, q, store).Error(0)
}

func (m *MockCatalogRepository) UpsertProduct(ctx context.Context, q repository.Querier, product model.Product) error {
	return m.Called(ctx, q, product).Error(0)
}

func (m *MockCatalogRepository) UpsertVariant(ctx context.Context, q repository.Querier, variant model.ProductVariant) error {
	return m.Called(ctx, q, variant).Error(0)
}

// MockInventoryRepository is a mock implementation of InventoryRepository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.Inventory, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) GetByStoreVariant(ctx context.Context, q repository.Querier, storeID, variantID string) (*model.Inventory, error) {
	args := m.Called(ctx, q, storeID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) ApplyDelta(ctx context.Context, q repository.Querier, id uuid.UUID, delta int) (*model.Inventory, error) {
	args := m.Called(ctx, q, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) ApplyDeltaAt(ctx context.Context, q repository.Querier, storeID, variantID string, delta int) (*model.Inventory, error) {
	args := m.Called(ctx, q, storeID, variantID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Update(ctx context.Context, q repository.Querier, id uuid.UUID, quantity *int, status *model.InventoryStatus) (*model.Inventory, error) {
	args := m.Called(ctx, q, id, quantity, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Upsert(ctx context.Context, q repository.Querier, inv model.Inventory) error {
	return m.Called(ctx, q, inv).Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Create(ctx context.Context, q repository.Querier, cart *model.VirtualCart) error {
	return m.Called(ctx, q, cart).Error(0)
}

func (m *MockCartRepository) GetByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.VirtualCart, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VirtualCart), args.Error(1)
}

func (m *MockCartRepository) GetForUpdate(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.VirtualCart, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VirtualCart), args.Error(1)
}

func (m *MockCartRepository) LockOwnerScope(ctx context.Context, q repository.Querier, userID, storeID string) error {
	return m.Called(ctx, q, userID, storeID).Error(0)
}

func (m *MockCartRepository) FindActiveByOwner(ctx context.Context, q repository.Querier, userID, storeID string, now time.Time) (*model.VirtualCart, error) {
	args := m.Called(ctx, q, userID, storeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VirtualCart), args.Error(1)
}

func (m *MockCartRepository) ExtendExpiry(ctx context.Context, q repository.Querier, id uuid.UUID, expiresAt time.Time) error {
	return m.Called(ctx, q, id, expiresAt).Error(0)
}

func (m *MockCartRepository) SetOwner(ctx context.Context, q repository.Querier, id uuid.UUID, userID string) error {
	return m.Called(ctx, q, id, userID).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, q repository.Querier, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeleteExpired(ctx context.Context, q repository.Querier, now time.Time) (int64, error) {
	args := m.Called(ctx, q, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, q repository.Querier, item *model.CartItem) error {
	return m.Called(ctx, q, item).Error(0)
}

func (m *MockCartRepository) AddItemIfAbsent(ctx context.Context, q repository.Querier, item *model.CartItem) (bool, error) {
	args := m.Called(ctx, q, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, q repository.Querier, cartID, itemID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, q, cartID, itemID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, q repository.Querier, cartID, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, cartID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) CountItems(ctx context.Context, q repository.Querier, cartID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, cartID)
	return args.Int(0), args.Error(1)
}

// MockFittingRepository is a mock implementation of FittingRepository.
type MockFittingRepository struct {
	mock.Mock
}

func (m *MockFittingRepository) Create(ctx context.Context, q repository.Querier, cart *model.FittingCart) error {
	return m.Called(ctx, q, cart).Error(0)
}

func (m *MockFittingRepository) GetByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.FittingCart, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingCart), args.Error(1)
}

func (m *MockFittingRepository) AddRequest(ctx context.Context, q repository.Querier, req *model.FittingRoomRequest) error {
	return m.Called(ctx, q, req).Error(0)
}

func (m *MockFittingRepository) GetRequest(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.FittingRoomRequest, *model.FittingCart, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.FittingRoomRequest), args.Get(1).(*model.FittingCart), args.Error(2)
}

func (m *MockFittingRepository) AssignRoom(ctx context.Context, q repository.Querier, id uuid.UUID, roomID string) (*model.FittingRoomRequest, error) {
	args := m.Called(ctx, q, id, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingRoomRequest), args.Error(1)
}

func (m *MockFittingRepository) TransitionStatus(ctx context.Context, q repository.Querier, id uuid.UUID, from, to model.FittingStatus) (*model.FittingRoomRequest, error) {
	args := m.Called(ctx, q, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FittingRoomRequest), args.Error(1)
}

func (m *MockFittingRepository) DeleteRequest(ctx context.Context, q repository.Querier, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFittingRepository) CountRoomUsage(ctx context.Context, q repository.Querier, storeID, roomID string, exclude uuid.UUID) (int, error) {
	args := m.Called(ctx, q, storeID, roomID, exclude)
	return args.Int(0), args.Error(1)
}

func (m *MockFittingRepository) ListPendingByStore(ctx context.Context, q repository.Querier, storeID string) ([]model.StoreFittingRequest, error) {
	args := m.Called(ctx, q, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoreFittingRequest), args.Error(1)
}

func (m *MockFittingRepository) DeleteExpired(ctx context.Context, q repository.Querier, now time.Time) (int64, error) {
	args := m.Called(ctx, q, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, q repository.Querier, order *model.Order) error {
	return m.Called(ctx, q, order).Error(0)
}

func (m *MockOrderRepository) CreateOrderDetails(ctx context.Context, q repository.Querier, details []model.OrderDetail) error {
	return m.Called(ctx, q, details).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, q repository.Querier, id uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderDetail), args.Error(2)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, q repository.Querier, id uuid.UUID, from, to model.OrderStatus, at time.Time) (*model.Order, error) {
	args := m.Called(ctx, q, id, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// eventOfType matches an events.Event by type.
func eventOfType(t events.Type) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == t })
}

var (
	fixedNow  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	customer  = model.Actor{UserID: "u1", Role: model.RoleCustomer}
	stranger  = model.Actor{UserID: "u2", Role: model.RoleCustomer}
	employee  = model.Actor{UserID: "staff-1", Role: model.RoleEmployee}
	guest     = model.GuestActor()
	testPrice = decimal.RequireFromString("10.00")
)

func clock() time.Time { return fixedNow }
