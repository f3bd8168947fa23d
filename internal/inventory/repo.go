package inventory

import (
	"context"

	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// LineFilter narrows inventory view queries.
type LineFilter struct {
	Hub string
	SKU string
}

// ViewRow is one inventory line joined with its catalog name.
type ViewRow struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Hub         string `json:"hub"`
	Quantity    int    `json:"quantity"`
}

// Repository reads the inventory projection. All writes go through the
// ledger; this surface is read-only on purpose.
type Repository interface {
	ListView(ctx context.Context, filter LineFilter) ([]ViewRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory read repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListView(ctx context.Context, filter LineFilter) ([]ViewRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InventoryLine{}).
		Select("inventory_lines.sku AS sku, sku_infos.product_name AS product_name, inventory_lines.hub AS hub, inventory_lines.quantity AS quantity").
		Joins("LEFT JOIN sku_infos ON sku_infos.sku = inventory_lines.sku")
	if filter.Hub != "" {
		query = query.Where("inventory_lines.hub = ?", filter.Hub)
	}
	if filter.SKU != "" {
		query = query.Where("inventory_lines.sku = ?", filter.SKU)
	}

	var rows []ViewRow
	if err := query.Order("inventory_lines.hub ASC, inventory_lines.sku ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
