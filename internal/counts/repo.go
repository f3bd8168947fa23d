package counts

import (
	"context"

	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Filter narrows count confirmation queries.
type Filter struct {
	Hub      string
	Username string
	Limit    int
}

// Repository manages count confirmation persistence.
type Repository interface {
	Create(ctx context.Context, confirmation *models.CountConfirmation) error
	List(ctx context.Context, filter Filter) ([]models.CountConfirmation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a counts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, confirmation *models.CountConfirmation) error {
	return r.db.WithContext(ctx).Create(confirmation).Error
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.CountConfirmation, error) {
	query := r.db.WithContext(ctx).Model(&models.CountConfirmation{})
	if filter.Hub != "" {
		query = query.Where("hub = ?", filter.Hub)
	}
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var confirmations []models.CountConfirmation
	if err := query.Order("confirmed_at DESC, id DESC").Find(&confirmations).Error; err != nil {
		return nil, err
	}
	return confirmations, nil
}
