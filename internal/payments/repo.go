package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment intent repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// FindByIDForUpdate locks the row for the rest of the transaction so
// concurrent transitions on the same intent serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentIntent, error) {
	var intents []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.PaymentStatusPending).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Find(&intents).Error
	if err != nil {
		return nil, err
	}
	return intents, nil
}
