package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
)

// Repository defines persistence operations for buyer notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
