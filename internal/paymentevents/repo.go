package paymentevents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

// Repository persists audit entries. There is deliberately no update or
// delete surface; the log only grows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.PaymentEvent) (*models.PaymentEvent, error)
	ListByIntentID(ctx context.Context, intentID uuid.UUID) ([]models.PaymentEvent, error)
	ListPage(ctx context.Context, intentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.PaymentEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an event repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.PaymentEvent) (*models.PaymentEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) ListByIntentID(ctx context.Context, intentID uuid.UUID) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("intent_id = ?", intentID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListPage returns events in append order starting after the cursor. The
// caller passes limit+1 to detect whether another page exists.
func (r *repository) ListPage(ctx context.Context, intentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.PaymentEvent, error) {
	query := r.db.WithContext(ctx).
		Where("intent_id = ?", intentID).
		Order("created_at ASC, id ASC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var events []models.PaymentEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
