package router

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Carts     *handler.CartHandler
	Fittings  *handler.FittingHandler
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Catalog   *handler.CatalogHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, db Pinger, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Probes (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ready"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Virtual carts
	mux.Handle("/api/carts", handler.Methods{
		http.MethodPost: h.Carts.Create,
	})
	mux.Handle("/api/carts/{cartID}", handler.Methods{
		http.MethodGet: h.Carts.Get,
	})
	mux.Handle("/api/carts/{cartID}/claim", handler.Methods{
		http.MethodPost: h.Carts.Claim,
	})
	mux.Handle("/api/carts/{cartID}/items", handler.Methods{
		http.MethodPost: h.Carts.AddItem,
	})
	mux.Handle("/api/carts/{cartID}/items/{itemID}", handler.Methods{
		http.MethodPatch:  h.Carts.UpdateItem,
		http.MethodDelete: h.Carts.RemoveItem,
	})
	mux.Handle("/api/carts/{cartID}/checkout", handler.Methods{
		http.MethodPost: h.Carts.Checkout,
	})

	// Fitting rooms
	mux.Handle("/api/fitting-carts", handler.Methods{
		http.MethodPost: h.Fittings.Create,
	})
	mux.Handle("/api/fitting-carts/{cartID}", handler.Methods{
		http.MethodGet: h.Fittings.Get,
	})
	mux.Handle("/api/fitting-carts/{cartID}/requests", handler.Methods{
		http.MethodPost: h.Fittings.AddRequest,
	})
	mux.Handle("/api/fitting-carts/{cartID}/transfer", handler.Methods{
		http.MethodPost: h.Fittings.Transfer,
	})
	mux.Handle("/api/fitting-requests/{requestID}", handler.Methods{
		http.MethodPatch:  h.Fittings.UpdateRequest,
		http.MethodDelete: h.Fittings.RemoveRequest,
	})
	mux.Handle("/api/stores/{storeID}/fitting-requests", handler.Methods{
		http.MethodGet: h.Fittings.ListStoreRequests,
	})

	// Orders
	mux.Handle("/api/orders/{orderID}", handler.Methods{
		http.MethodGet: h.Orders.GetByID,
	})
	mux.Handle("/api/orders/{orderID}/status", handler.Methods{
		http.MethodPatch: h.Orders.UpdateStatus,
	})

	// Inventory
	mux.Handle("/api/inventory/{inventoryID}", handler.Methods{
		http.MethodGet: h.Inventory.GetByID,
		http.MethodPut: h.Inventory.Update,
	})
	mux.Handle("/api/inventory/{inventoryID}/adjust", handler.Methods{
		http.MethodPost: h.Inventory.Adjust,
	})
	mux.Handle("/api/stores/{storeID}/inventory/{variantID}", handler.Methods{
		http.MethodGet: h.Inventory.GetByStoreVariant,
	})

	// Catalogue
	mux.Handle("/api/products", handler.Methods{
		http.MethodGet: h.Catalog.ListProducts,
	})
	mux.Handle("/api/products/{productID}/price", handler.Methods{
		http.MethodPut: h.Catalog.UpdatePrice,
	})
	mux.Handle("/api/variants/{variantID}", handler.Methods{
		http.MethodGet:   h.Catalog.GetVariant,
		http.MethodPatch: h.Catalog.UpdateVariant,
	})

	// Apply middleware in order: Recovery -> otel -> Logging -> CORS -> APIKeyAuth -> Identity -> metrics
	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = middleware.Identity(handler)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = otelhttp.NewHandler(handler, "storefront")
	handler = middleware.Recovery(logger)(handler)

	return handler
}
