package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/lock"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

// emptyHandlers satisfies New for requests that never reach a service.
func emptyHandlers() Handlers {
	return Handlers{
		Carts:     &handler.CartHandler{},
		Fittings:  &handler.FittingHandler{},
		Orders:    &handler.OrderHandler{},
		Inventory: &handler.InventoryHandler{},
		Catalog:   &handler.CatalogHandler{},
	}
}

func TestRouter_Probes(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		pingErr        error
		expectedStatus int
		expectedBody   string
	}{
		{"health", "/health", nil, http.StatusOK, `{"status":"healthy"}`},
		{"ready", "/ready", nil, http.StatusOK, `{"status":"ready"}`},
		{"not ready", "/ready", errors.New("connection refused"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(emptyHandlers(), fakePinger{err: tt.pingErr}, testAPIKey, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	h := New(emptyHandlers(), fakePinger{}, testAPIKey, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_Authentication(t *testing.T) {
	h := New(emptyHandlers(), fakePinger{}, testAPIKey, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.ErrCodeUnauthorised, resp.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := New(emptyHandlers(), fakePinger{}, testAPIKey, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/carts", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := New(emptyHandlers(), fakePinger{}, testAPIKey, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// client drives the full router the way the gateway would.
type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path string, actor model.Actor, body any, dst any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	if actor.Authenticated() {
		req.Header.Set("X-User-ID", actor.UserID)
		req.Header.Set("X-User-Role", string(actor.Role))
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	if dst != nil && rec.Code < http.StatusBadRequest {
		var envelope struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.True(c.t, envelope.Success)
		require.NoError(c.t, json.Unmarshal(envelope.Data, dst))
	}
	return rec.Code
}

func newIntegrationRouter(db *testutil.TestDB) http.Handler {
	logger := zerolog.Nop()
	publisher := events.NewLogPublisher(logger)

	cartRepo := repository.NewCartRepository(logger)
	fittingRepo := repository.NewFittingRepository(logger)
	catalogRepo := repository.NewCatalogRepository(logger)
	invRepo := repository.NewInventoryRepository(logger)
	orderRepo := repository.NewOrderRepository(logger)

	carts := service.NewCartService(db.Pool, cartRepo, catalogRepo, publisher, 2*time.Hour, logger)
	fittings := service.NewFittingService(db.Pool, fittingRepo, catalogRepo, 110*time.Minute, logger)
	transfers := service.NewTransferService(db.Pool, cartRepo, fittingRepo, catalogRepo, invRepo, orderRepo,
		lock.NewLocal(), publisher, 2*time.Hour, logger)
	orders := service.NewOrderService(db.Pool, orderRepo, cartRepo, publisher, testutil.StoreOnline, logger)

	return New(Handlers{
		Carts:     handler.NewCartHandler(carts, transfers, logger),
		Fittings:  handler.NewFittingHandler(fittings, transfers, logger),
		Orders:    handler.NewOrderHandler(orders, logger),
		Inventory: handler.NewInventoryHandler(service.NewInventoryService(db.Pool, invRepo, publisher, logger), logger),
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(db.Pool, catalogRepo, logger), logger),
	}, db.Pool, testAPIKey, logger)
}

func TestRouter_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db.Pool)
	c := client{t: t, h: newIntegrationRouter(db)}

	shopper := model.Actor{UserID: "u1", Role: model.RoleCustomer}
	clerk := model.Actor{UserID: "staff-1", Role: model.RoleEmployee}

	// Try on two items in store, move them to a cart and pay at the till.
	var fitting model.FittingCart
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/fitting-carts", shopper,
		model.FittingCartRequest{StoreID: testutil.StoreDowntown}, &fitting))

	var shirt, jeans model.FittingRoomRequest
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/fitting-carts/"+fitting.ID.String()+"/requests", shopper,
		model.FittingRequestCreate{VariantID: testutil.VariantShirtM}, &shirt))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/fitting-carts/"+fitting.ID.String()+"/requests", shopper,
		model.FittingRequestCreate{VariantID: testutil.VariantJeans32}, &jeans))

	room := "R1"
	var assigned model.StoreFittingRequest
	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/fitting-requests/"+shirt.ID.String(), clerk,
		model.FittingRequestUpdate{FittingRoomID: &room}, &assigned))
	assert.Equal(t, &room, assigned.FittingRoomID)

	var pending []model.StoreFittingRequest
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stores/"+testutil.StoreDowntown+"/fitting-requests", clerk, nil, &pending))
	assert.Len(t, pending, 2)

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/stores/"+testutil.StoreDowntown+"/fitting-requests", shopper, nil, nil))

	var transfer model.TransferResult
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/fitting-carts/"+fitting.ID.String()+"/transfer", shopper, nil, &transfer))
	assert.Equal(t, 2, transfer.ItemsAdded)

	var order model.OrderResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/carts/"+transfer.VirtualCartID.String()+"/checkout", shopper, nil, &order))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("89.49")), "total %s", order.TotalAmount)
	assert.Equal(t, model.OrderPending, order.Status)

	var inv model.Inventory
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/stores/"+testutil.StoreDowntown+"/inventory/"+testutil.VariantShirtM, model.GuestActor(), nil, &inv))
	assert.Equal(t, 9, inv.Quantity)

	// Only staff may complete an in-store order.
	complete := model.OrderStatusRequest{Status: model.OrderCompleted, StoreContext: testutil.StoreDowntown}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPatch, "/api/orders/"+order.ID.String()+"/status", shopper, complete, nil))

	var completed model.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/orders/"+order.ID.String()+"/status", clerk, complete, &completed))
	assert.Equal(t, model.OrderCompleted, completed.Status)

	assert.Equal(t, http.StatusConflict, c.do(http.MethodPatch, "/api/orders/"+order.ID.String()+"/status", shopper,
		model.OrderStatusRequest{Status: model.OrderCancelled}, nil))

	// A guest cart is claimed at sign-in.
	var guestCart model.CartResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/carts", model.GuestActor(),
		model.CartRequest{StoreID: testutil.StoreOnline}, &guestCart))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/carts/"+guestCart.ID.String()+"/items", model.GuestActor(),
		model.CartItemRequest{VariantID: testutil.VariantShirtL, Quantity: 1}, nil))

	var claimed model.CartResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/carts/"+guestCart.ID.String()+"/claim", shopper, nil, &claimed))
	owner, ok := claimed.Owner.UserID()
	assert.True(t, ok)
	assert.Equal(t, shopper.UserID, owner)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/carts/"+uuid.New().String()+"/claim", model.GuestActor(), nil, nil))
}
