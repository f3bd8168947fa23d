package models

import "time"

// InventoryLine tracks the on-hand count for one SKU at one hub.
// Mutated only through the ledger; rows appear implicitly at quantity 0
// on first movement or hub assignment.
type InventoryLine struct {
	SKU       string    `gorm:"column:sku;primaryKey"`
	Hub       string    `gorm:"column:hub;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
