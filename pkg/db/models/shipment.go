package models

import (
	"time"

	"github.com/triplethreads/hubstock-backend/pkg/enums"
)

// Shipment is a supplier-submitted inbound delivery. Manifest keeps the
// legacy "sku x qty, ..." encoding in the column the original tool used;
// content is frozen after creation and only the status may change.
type Shipment struct {
	ID        uint                 `gorm:"primaryKey;autoIncrement"`
	Supplier  string               `gorm:"column:supplier;not null"`
	Tracking  string               `gorm:"column:tracking;not null"`
	Carrier   string               `gorm:"column:carrier;not null"`
	Hub       string               `gorm:"column:hub;not null"`
	Manifest  string               `gorm:"column:skus;not null"`
	ShipDate  time.Time            `gorm:"column:ship_date;not null"`
	Status    enums.ShipmentStatus `gorm:"column:status;not null;default:'Pending'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
