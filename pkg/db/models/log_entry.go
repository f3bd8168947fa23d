package models

import (
	"time"

	"github.com/triplethreads/hubstock-backend/pkg/enums"
)

// LogEntry is the append-only audit record paired with every accepted
// inventory mutation. Qty is always positive; Action carries the sign.
type LogEntry struct {
	ID        uint                 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime;index"`
	Actor     string               `gorm:"column:actor;not null"`
	SKU       string               `gorm:"column:sku;not null;index:idx_log_entries_line"`
	Hub       string               `gorm:"column:hub;not null;index:idx_log_entries_line"`
	Action    enums.MovementAction `gorm:"column:action;not null"`
	Qty       int                  `gorm:"column:qty;not null"`
	Comment   string               `gorm:"column:comment;not null;default:''"`
}
