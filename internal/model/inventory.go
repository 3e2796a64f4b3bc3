package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryStatus is the availability of a stock record.
type InventoryStatus string

const (
	InventoryAvailable    InventoryStatus = "available"
	InventoryUnavailable  InventoryStatus = "unavailable"
	InventoryDiscontinued InventoryStatus = "discontinued"
)

// Valid reports whether s is a known inventory status.
func (s InventoryStatus) Valid() bool {
	switch s {
	case InventoryAvailable, InventoryUnavailable, InventoryDiscontinued:
		return true
	}
	return false
}

// Inventory is the stock of one variant in one store.
type Inventory struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	StoreID     string          `json:"storeId" db:"store_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	VariantID   string          `json:"variantId" db:"variant_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Status      InventoryStatus `json:"status" db:"status"`
	LastUpdated time.Time       `json:"lastUpdated" db:"last_updated"`
}

// InventoryAdjustRequest is the payload for a relative stock change.
type InventoryAdjustRequest struct {
	Delta int `json:"delta"`
}

// InventoryUpdateRequest is the payload for absolute staff edits.
type InventoryUpdateRequest struct {
	Quantity *int             `json:"quantity,omitempty"`
	Status   *InventoryStatus `json:"status,omitempty"`
}
