package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// FittingHandler handles fitting cart and fitting room request HTTP requests.
type FittingHandler struct {
	fittings  service.FittingService
	transfers service.TransferService
	logger    zerolog.Logger
}

// NewFittingHandler creates a new fitting handler.
func NewFittingHandler(fittings service.FittingService, transfers service.TransferService, logger zerolog.Logger) *FittingHandler {
	return &FittingHandler{
		fittings:  fittings,
		transfers: transfers,
		logger:    logger.With().Str("handler", "fitting").Logger(),
	}
}

// Create handles POST /api/fitting-carts requests.
func (h *FittingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.FittingCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.fittings.Create(r.Context(), actor(r), req.StoreID)
	if err != nil {
		writeServiceError(w, err, "failed to create fitting cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, cart)
}

// Get handles GET /api/fitting-carts/{cartID} requests.
func (h *FittingHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	cart, err := h.fittings.Get(r.Context(), actor(r), cartID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve fitting cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

// AddRequest handles POST /api/fitting-carts/{cartID}/requests requests.
func (h *FittingHandler) AddRequest(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	var req model.FittingRequestCreate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	created, err := h.fittings.AddRequest(r.Context(), actor(r), cartID, req)
	if err != nil {
		writeServiceError(w, err, "failed to add fitting request", h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}

// Transfer handles POST /api/fitting-carts/{cartID}/transfer requests. An
// empty body transfers into the caller's active cart.
func (h *FittingHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	var req model.TransferRequest
	if !decodeOptionalJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.transfers.Transfer(r.Context(), actor(r), cartID, req.VirtualCartID)
	if err != nil {
		writeServiceError(w, err, "failed to transfer fitting cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// UpdateRequest handles PATCH /api/fitting-requests/{requestID} requests.
// A room assignment and a status change in one body are saved together.
func (h *FittingHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestID", h.logger)
	if !ok {
		return
	}

	var req model.FittingRequestUpdate
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.FittingRoomID == nil && req.Status == nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "fittingRoomId or status is required", h.logger)
		return
	}

	updated, err := h.fittings.UpdateRequest(r.Context(), actor(r), requestID, req)
	if err != nil {
		writeServiceError(w, err, "failed to update fitting request", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, updated)
}

// RemoveRequest handles DELETE /api/fitting-requests/{requestID} requests.
func (h *FittingHandler) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestID", h.logger)
	if !ok {
		return
	}

	if err := h.fittings.Remove(r.Context(), actor(r), requestID); err != nil {
		writeServiceError(w, err, "failed to remove fitting request", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": requestID, "deleted": true})
}

// ListStoreRequests handles GET /api/stores/{storeID}/fitting-requests requests.
func (h *FittingHandler) ListStoreRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.fittings.ListStoreRequests(r.Context(), actor(r), r.PathValue("storeID"))
	if err != nil {
		writeServiceError(w, err, "failed to list fitting requests", h.logger)
		return
	}
	if requests == nil {
		requests = []model.StoreFittingRequest{}
	}

	writeSuccess(w, http.StatusOK, requests)
}
