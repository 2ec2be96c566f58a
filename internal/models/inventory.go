package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InventoryActive   = "active"
	InventoryInactive = "inactive"
)

const (
	StockIn  = "In Stock"
	StockLow = "Low Stock"
	StockOut = "Out of Stock"
)

const DefaultLowStockThreshold = 50

type Inventory struct {
	Base
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Quantity  int       `gorm:"not null"                 json:"quantity"`
	Date      time.Time `gorm:"not null"                 json:"date"`
	Remarks   string    `json:"remarks"`
	Status    string    `gorm:"size:16;index;not null"   json:"status"`
}

func ValidInventoryStatus(s string) bool {
	return s == InventoryActive || s == InventoryInactive
}

// StockStatus classifies an aggregated quantity against a low-stock threshold.
func StockStatus(quantity, threshold int) string {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	switch {
	case quantity <= 0:
		return StockOut
	case quantity < threshold:
		return StockLow
	default:
		return StockIn
	}
}
