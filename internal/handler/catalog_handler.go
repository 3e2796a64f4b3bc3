package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles product and variant HTTP requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListProducts handles GET /api/products requests with pagination.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset")
	if !ok {
		return
	}

	products, err := h.service.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve products", h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeSuccess(w, http.StatusOK, products)
}

// GetVariant handles GET /api/variants/{variantID} requests.
func (h *CatalogHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.service.GetVariant(r.Context(), r.PathValue("variantID"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve variant", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, variant)
}

// UpdateVariant handles PATCH /api/variants/{variantID} requests.
func (h *CatalogHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var req model.VariantUpdate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	variant, err := h.service.UpdateVariant(r.Context(), actor(r), r.PathValue("variantID"), req)
	if err != nil {
		writeServiceError(w, err, "failed to update variant", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, variant)
}

// UpdatePrice handles PUT /api/products/{productID}/price requests.
func (h *CatalogHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req model.PriceUpdate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.UpdateProductPrice(r.Context(), actor(r), r.PathValue("productID"), req.Price)
	if err != nil {
		writeServiceError(w, err, "failed to update product price", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, product)
}

// queryInt parses an optional integer query parameter; absent means zero.
func (h *CatalogHandler) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid "+name+" parameter", h.logger)
		return 0, false
	}
	return v, true
}
