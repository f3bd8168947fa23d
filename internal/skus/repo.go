package skus

import (
	"context"

	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages SKU metadata and hub assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, info *models.SkuInfo) error
	Save(ctx context.Context, info *models.SkuInfo) error
	FindBySKU(ctx context.Context, sku string) (*models.SkuInfo, error)
	List(ctx context.Context) ([]models.SkuInfo, error)
	EnsureLine(ctx context.Context, sku, hub string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a SKU repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, info *models.SkuInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

func (r *repository) Save(ctx context.Context, info *models.SkuInfo) error {
	return r.db.WithContext(ctx).Save(info).Error
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.SkuInfo, error) {
	var info models.SkuInfo
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) List(ctx context.Context) ([]models.SkuInfo, error) {
	var infos []models.SkuInfo
	if err := r.db.WithContext(ctx).Order("sku ASC").Find(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

// EnsureLine creates the zero-quantity inventory line for a (sku, hub)
// pair if it does not exist yet. Existing quantities are never touched.
func (r *repository) EnsureLine(ctx context.Context, sku, hub string) error {
	line := models.InventoryLine{SKU: sku, Hub: hub}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&line).Error
}
