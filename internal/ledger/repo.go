package ledger

import (
	"context"

	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// LogFilter narrows audit log queries.
type LogFilter struct {
	SKU   string
	Hub   string
	Actor string
	Limit int
}

// Repository manages inventory lines and their paired audit entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ApplyDelta(ctx context.Context, sku, hub string, delta int) (bool, error)
	GetLine(ctx context.Context, sku, hub string) (*models.InventoryLine, error)
	CreateLine(ctx context.Context, line *models.InventoryLine) error
	InsertLog(ctx context.Context, entry *models.LogEntry) error
	ListLogs(ctx context.Context, filter LogFilter) ([]models.LogEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ApplyDelta adjusts one inventory line, guarding against negative stock
// in the WHERE clause so concurrent writers serialize on the row. Returns
// false when the guard rejected the update or the line does not exist.
func (r *repository) ApplyDelta(ctx context.Context, sku, hub string, delta int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryLine{}).
		Where("sku = ? AND hub = ? AND quantity + ? >= 0", sku, hub, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) GetLine(ctx context.Context, sku, hub string) (*models.InventoryLine, error) {
	var line models.InventoryLine
	err := r.db.WithContext(ctx).
		Where("sku = ? AND hub = ?", sku, hub).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.InventoryLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLogs(ctx context.Context, filter LogFilter) ([]models.LogEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.LogEntry{})
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.Hub != "" {
		query = query.Where("hub = ?", filter.Hub)
	}
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.LogEntry
	if err := query.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
