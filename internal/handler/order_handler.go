package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{orderID} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), actor(r), orderID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{orderID}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "orderID", h.logger)
	if !ok {
		return
	}

	var req model.OrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), actor(r), orderID, req)
	if err != nil {
		writeServiceError(w, err, "failed to update order status", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, order)
}
