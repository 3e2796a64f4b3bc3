package model

import (
	"time"

	"github.com/google/uuid"
)

// FittingStatus is the lifecycle state of a fitting room request.
type FittingStatus string

const (
	FittingPending   FittingStatus = "pending"
	FittingFulfilled FittingStatus = "fulfilled"
	FittingCancelled FittingStatus = "cancelled"
)

// Valid reports whether s is a known fitting status.
func (s FittingStatus) Valid() bool {
	switch s {
	case FittingPending, FittingFulfilled, FittingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s FittingStatus) Terminal() bool {
	return s == FittingFulfilled || s == FittingCancelled
}

// FittingCart is a short lived in-store try-on cart.
type FittingCart struct {
	ID        uuid.UUID            `json:"id" db:"id"`
	Owner     Owner                `json:"userId" db:"user_id"`
	StoreID   string               `json:"storeId" db:"store_id"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time            `json:"expiresAt" db:"expires_at"`
	Requests  []FittingRoomRequest `json:"requests"`
}

// Store implements ExpiringCart.
func (c *FittingCart) Store() string { return c.StoreID }

// ExpiredAt implements ExpiringCart.
func (c *FittingCart) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// FittingRoomRequest asks for one variant to be brought to a fitting room.
type FittingRoomRequest struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	FittingCartID uuid.UUID     `json:"fittingCartId" db:"fitting_cart_id"`
	VariantID     string        `json:"variantId" db:"variant_id"`
	FittingRoomID *string       `json:"fittingRoomId,omitempty" db:"fitting_room_id"`
	Status        FittingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// StoreFittingRequest is a request as seen by staff, with its cart context.
type StoreFittingRequest struct {
	FittingRoomRequest
	StoreID       string `json:"storeId"`
	Owner         Owner  `json:"userId"`
	DuplicateRoom bool   `json:"duplicateRoom"`
}

// FittingCartRequest is the payload for creating a fitting cart.
type FittingCartRequest struct {
	StoreID string `json:"storeId"`
}

// FittingRequestCreate is the payload for adding a request to a fitting cart.
type FittingRequestCreate struct {
	VariantID     string  `json:"variantId"`
	FittingRoomID *string `json:"fittingRoomId,omitempty"`
}

// FittingRequestUpdate is the payload for staff/user request updates.
type FittingRequestUpdate struct {
	FittingRoomID *string        `json:"fittingRoomId,omitempty"`
	Status        *FittingStatus `json:"status,omitempty"`
}

// TransferRequest is the payload for moving a fitting cart into a virtual cart.
type TransferRequest struct {
	VirtualCartID *uuid.UUID `json:"virtualCartId,omitempty"`
}

// TransferResult reports where a fitting cart was merged.
type TransferResult struct {
	VirtualCartID uuid.UUID `json:"virtualCartId"`
	ExpiresAt     time.Time `json:"expiresAt"`
	ItemsAdded    int       `json:"itemsAdded"`
}
