package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// InventoryHandler handles stock ledger HTTP requests.
type InventoryHandler struct {
	service service.InventoryService
	logger  zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(service service.InventoryService, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "inventory").Logger(),
	}
}

// GetByID handles GET /api/inventory/{inventoryID} requests.
func (h *InventoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "inventoryID", h.logger)
	if !ok {
		return
	}

	inv, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve inventory", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, inv)
}

// GetByStoreVariant handles GET /api/stores/{storeID}/inventory/{variantID} requests.
func (h *InventoryHandler) GetByStoreVariant(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), r.PathValue("storeID"), r.PathValue("variantID"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve inventory", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, inv)
}

// Adjust handles POST /api/inventory/{inventoryID}/adjust requests.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "inventoryID", h.logger)
	if !ok {
		return
	}

	var req model.InventoryAdjustRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	inv, err := h.service.Adjust(r.Context(), actor(r), id, req.Delta)
	if err != nil {
		writeServiceError(w, err, "failed to adjust inventory", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, inv)
}

// Update handles PUT /api/inventory/{inventoryID} requests.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "inventoryID", h.logger)
	if !ok {
		return
	}

	var req model.InventoryUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	inv, err := h.service.Update(r.Context(), actor(r), id, req)
	if err != nil {
		writeServiceError(w, err, "failed to update inventory", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, inv)
}
