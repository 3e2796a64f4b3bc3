package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartDeletedResponse is returned when removing the last line deleted the cart.
type CartDeletedResponse struct {
	CartID  uuid.UUID `json:"cartId"`
	Deleted bool      `json:"deleted"`
}

// CartHandler handles virtual cart HTTP requests.
type CartHandler struct {
	carts     service.CartService
	transfers service.TransferService
	logger    zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, transfers service.TransferService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		transfers: transfers,
		logger:    logger.With().Str("handler", "cart").Logger(),
	}
}

// Create handles POST /api/carts requests.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.carts.CreateOrReuse(r.Context(), actor(r), req.StoreID)
	if err != nil {
		writeServiceError(w, err, "failed to create cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, cart)
}

// Get handles GET /api/carts/{cartID} requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	cart, err := h.carts.Get(r.Context(), actor(r), cartID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

// Claim handles POST /api/carts/{cartID}/claim requests.
func (h *CartHandler) Claim(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	cart, err := h.carts.Claim(r.Context(), actor(r), cartID)
	if err != nil {
		writeServiceError(w, err, "failed to claim cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

// AddItem handles POST /api/carts/{cartID}/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	var req model.CartItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.carts.AddItem(r.Context(), actor(r), cartID, req)
	if err != nil {
		writeServiceError(w, err, "failed to add cart item", h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, cart)
}

// UpdateItem handles PATCH /api/carts/{cartID}/items/{itemID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	var req model.CartItemUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.carts.UpdateItemQuantity(r.Context(), actor(r), cartID, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, err, "failed to update cart item", h.logger)
		return
	}

	h.writeCart(w, cartID, cart)
}

// RemoveItem handles DELETE /api/carts/{cartID}/items/{itemID} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), actor(r), cartID, itemID)
	if err != nil {
		writeServiceError(w, err, "failed to remove cart item", h.logger)
		return
	}

	h.writeCart(w, cartID, cart)
}

// Checkout handles POST /api/carts/{cartID}/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID, ok := pathUUID(w, r, "cartID", h.logger)
	if !ok {
		return
	}

	order, err := h.transfers.Checkout(r.Context(), actor(r), cartID)
	if err != nil {
		writeServiceError(w, err, "failed to checkout cart", h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, order)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, cartID uuid.UUID, cart *model.CartResponse) {
	if cart == nil {
		writeSuccess(w, http.StatusOK, CartDeletedResponse{CartID: cartID, Deleted: true})
		return
	}
	writeSuccess(w, http.StatusOK, cart)
}
