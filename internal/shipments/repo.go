package shipments

import (
	"context"

	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	"gorm.io/gorm"
)

// Filter narrows shipment listings.
type Filter struct {
	Hub      string
	Supplier string
	Status   enums.ShipmentStatus
}

// Repository manages shipment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByID(ctx context.Context, id uint) (*models.Shipment, error)
	List(ctx context.Context, filter Filter) ([]models.Shipment, error)
	TransitionFromPending(ctx context.Context, id uint, target enums.ShipmentStatus) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Shipment, error) {
	query := r.db.WithContext(ctx).Model(&models.Shipment{})
	if filter.Hub != "" {
		query = query.Where("hub = ?", filter.Hub)
	}
	if filter.Supplier != "" {
		query = query.Where("supplier = ?", filter.Supplier)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var shipments []models.Shipment
	if err := query.Order("created_at DESC, id DESC").Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// TransitionFromPending flips a shipment's status with the Pending guard in
// the WHERE clause, so a concurrent receive/delete loses cleanly instead of
// double-applying.
func (r *repository) TransitionFromPending(ctx context.Context, id uint, target enums.ShipmentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND status = ?", id, enums.ShipmentStatusPending).
		Update("status", target)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
